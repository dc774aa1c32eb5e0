package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/config"
	apperrors "github.com/lingolink/relay-server-go/internal/errors"
	"github.com/lingolink/relay-server-go/internal/model"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/store"
	"github.com/lingolink/relay-server-go/internal/translate"
)

// RelayService routes one message between the two sides of a room,
// translating into the recipient's language on the way.
type RelayService struct {
	store      store.Store
	registry   *registry.Registry
	translator translate.Translator
}

func NewRelayService(s store.Store, reg *registry.Registry, tr translate.Translator) *RelayService {
	return &RelayService{
		store:      s,
		registry:   reg,
		translator: tr,
	}
}

// RelayMessage fans text out to both sides of the room: the recipient gets
// it as "partner", the sender gets its own echo as "self", both carrying
// the same translated text. Translation failure degrades to the original
// text; delivery never depends on the translator.
func (s *RelayService) RelayMessage(ctx context.Context, roomID, senderConnID, text string) error {
	if roomID == "" {
		return apperrors.MissingRequired("roomId")
	}
	if text == "" {
		return apperrors.MissingRequired("text")
	}
	if utf8.RuneCountInString(text) > config.MaxMessageChars {
		return apperrors.InvalidInput("text", "message too long")
	}

	room, found, err := getRoom(ctx, s.store, roomID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.RoomNotFound()
	}

	sender, recipient, ok := room.Slots(senderConnID)
	if !ok {
		return apperrors.SenderNotInRoom()
	}
	if room.PendingHost || recipient.ConnID == "" {
		// Recoverable: the partner may rejoin or the host may still bind.
		return apperrors.PartnerUnavailable()
	}

	translated := text
	translationFailed := false
	if sender.Language != recipient.Language {
		out, err := s.translator.Translate(ctx, text, sender.Language, recipient.Language)
		if err != nil {
			log.Warn().
				Err(err).
				Str("roomId", roomID).
				Str("sourceLang", sender.Language).
				Str("targetLang", recipient.Language).
				Msg("translation failed, passing original text through")
			translationFailed = true
		} else {
			translated = out
		}
	}

	msg := model.ChatMessage{
		ID:                uuid.NewString(),
		Original:          text,
		Translated:        translated,
		TranslationFailed: translationFailed,
		Timestamp:         time.Now().UTC().Format(time.RFC3339Nano),
	}

	toRecipient := msg
	toRecipient.Sender = model.SenderPartner
	if !s.registry.Send(recipient.ConnID, model.EventNewMessage, toRecipient) {
		// Recipient dropped between the store read and delivery; the sender
		// still gets its echo.
		log.Debug().
			Str("roomId", roomID).
			Str("connId", recipient.ConnID).
			Msg("recipient offline, message not delivered")
	}

	toSender := msg
	toSender.Sender = model.SenderSelf
	s.registry.Send(senderConnID, model.EventNewMessage, toSender)

	return nil
}
