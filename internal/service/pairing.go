package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/audit"
	apperrors "github.com/lingolink/relay-server-go/internal/errors"
	"github.com/lingolink/relay-server-go/internal/model"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/store"
	"github.com/lingolink/relay-server-go/internal/util"
)

const joinCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type IssueResult struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// PairingService drives the token state machine: issuance, issuer binding
// and redemption. Pairing order is commutative: redeeming before the
// issuer listens parks the redeemer in a pending room, and the bind-time
// room scan completes it retroactively.
type PairingService struct {
	store     store.Store
	registry  *registry.Registry
	archive   archive.Recorder
	tokenTTL  time.Duration
	listenTTL time.Duration
	roomTTL   time.Duration
}

func NewPairingService(
	s store.Store,
	reg *registry.Registry,
	rec archive.Recorder,
	tokenTTL, listenTTL, roomTTL time.Duration,
) *PairingService {
	return &PairingService{
		store:     s,
		registry:  reg,
		archive:   rec,
		tokenTTL:  tokenTTL,
		listenTTL: listenTTL,
		roomTTL:   roomTTL,
	}
}

// IssueToken creates a single-use join code. With a bound issuer the code
// gets the short TTL; codes issued before the issuer connects (stateless
// HTTP path) get the long TTL so the issuer has time to start listening.
func (s *PairingService) IssueToken(ctx context.Context, language, issuerConnID string) (*IssueResult, error) {
	language = normalizeLanguage(language)
	if language == "" {
		return nil, apperrors.MissingRequired("language")
	}
	if !validLanguage(language) {
		return nil, apperrors.InvalidInput("language", "must be a short lowercase language tag")
	}

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = generateJoinCode()
		_, found, err := s.store.Get(ctx, store.TokenKey(code))
		if err != nil {
			return nil, apperrors.StoreUnavailable(err)
		}
		if !found {
			break
		}
	}

	tok := model.JoinToken{
		Code:           code,
		IssuerConnID:   issuerConnID,
		IssuerLanguage: language,
		CreatedAt:      time.Now().UTC(),
	}

	ttl := s.listenTTL
	if issuerConnID != "" {
		ttl = s.tokenTTL
	}

	if err := putJSON(ctx, s.store, store.TokenKey(code), tok, ttl); err != nil {
		return nil, err
	}

	log.Info().
		Str("code", util.MaskCode(code)).
		Str("issuerConnId", issuerConnID).
		Str("language", language).
		Dur("ttl", ttl).
		Msg("join token issued")
	audit.Log(ctx, audit.Event{
		Type:   audit.EventTokenIssued,
		ConnID: issuerConnID,
		Details: map[string]interface{}{
			"code":     util.MaskCode(code),
			"language": language,
			"bound":    issuerConnID != "",
		},
	})

	return &IssueResult{
		Token:     code,
		ExpiresIn: int(ttl.Seconds()),
	}, nil
}

// BindIssuer attaches a late-connecting issuer to its token. If a redeemer
// already created a pending room for this code, the bind completes pairing
// instead of merely updating the token; this scan is what makes issuance
// order commutative with redemption order.
func (s *PairingService) BindIssuer(ctx context.Context, code, connID, language string) error {
	code = normalizeCode(code)
	language = normalizeLanguage(language)
	if code == "" {
		return apperrors.MissingRequired("token")
	}
	if !validLanguage(language) {
		return apperrors.MissingRequired("language")
	}

	var tok model.JoinToken
	found, err := getJSON(ctx, s.store, store.TokenKey(code), &tok)
	if err != nil {
		return err
	}
	if !found {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventTokenRejected,
			ConnID:  connID,
			Details: map[string]interface{}{"code": util.MaskCode(code), "op": "bind"},
		})
		return apperrors.TokenInvalid()
	}

	room, err := s.findPendingRoom(ctx, code)
	if err != nil {
		return err
	}
	if room != nil {
		return s.completePending(ctx, room, code, connID, language)
	}

	tok.IssuerConnID = connID
	tok.IssuerLanguage = language
	if err := putJSON(ctx, s.store, store.TokenKey(code), tok, s.listenTTL); err != nil {
		return err
	}

	log.Info().
		Str("code", util.MaskCode(code)).
		Str("connId", connID).
		Msg("issuer bound to token")
	audit.Log(ctx, audit.Event{
		Type:    audit.EventTokenBound,
		ConnID:  connID,
		Details: map[string]interface{}{"code": util.MaskCode(code), "language": language},
	})

	return nil
}

// RedeemToken consumes a join code. When the issuer is live the room is
// created fully paired and the token deleted; otherwise the redeemer is
// parked in a pending room and the token survives for the bind-time scan.
func (s *PairingService) RedeemToken(ctx context.Context, code, connID, language string) error {
	code = normalizeCode(code)
	language = normalizeLanguage(language)
	if code == "" {
		return apperrors.MissingRequired("token")
	}
	if !validLanguage(language) {
		return apperrors.MissingRequired("language")
	}

	var tok model.JoinToken
	found, err := getJSON(ctx, s.store, store.TokenKey(code), &tok)
	if err != nil {
		return err
	}
	if !found {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventTokenRejected,
			ConnID:  connID,
			Details: map[string]interface{}{"code": util.MaskCode(code), "op": "redeem"},
		})
		return apperrors.TokenInvalid()
	}

	if tok.IssuerConnID == connID {
		return apperrors.InvalidInput("token", "cannot join a token you issued")
	}

	if tok.IssuerConnID != "" && s.registry.Resolve(tok.IssuerConnID) {
		return s.createPairedRoom(ctx, &tok, code, connID, language)
	}

	return s.createPendingRoom(ctx, &tok, code, connID, language)
}

func (s *PairingService) createPairedRoom(ctx context.Context, tok *model.JoinToken, code, guestConnID, guestLang string) error {
	room := &model.Room{
		ID:        uuid.NewString(),
		Host:      model.Participant{ConnID: tok.IssuerConnID, Language: tok.IssuerLanguage},
		Guest:     model.Participant{ConnID: guestConnID, Language: guestLang},
		CreatedAt: time.Now().UTC(),
	}

	if err := putJSON(ctx, s.store, store.RoomKey(room.ID), room, s.roomTTL); err != nil {
		return err
	}
	if err := s.mapConn(ctx, tok.IssuerConnID, room.ID); err != nil {
		return err
	}
	if err := s.mapConn(ctx, guestConnID, room.ID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.TokenKey(code)); err != nil {
		// The room exists either way; a leftover token only expires later.
		log.Warn().Err(err).Str("code", util.MaskCode(code)).Msg("failed to delete redeemed token")
	}

	s.notifyPaired(room)
	s.archive.RoomPaired(ctx, room.ID, room.Host.Language, room.Guest.Language)

	log.Info().
		Str("roomId", room.ID).
		Str("hostConnId", room.Host.ConnID).
		Str("guestConnId", room.Guest.ConnID).
		Msg("room paired")
	audit.Log(ctx, audit.Event{
		Type:   audit.EventRoomCreated,
		ConnID: guestConnID,
		RoomID: room.ID,
		Details: map[string]interface{}{
			"code":          util.MaskCode(code),
			"hostLanguage":  room.Host.Language,
			"guestLanguage": room.Guest.Language,
		},
	})

	return nil
}

func (s *PairingService) createPendingRoom(ctx context.Context, tok *model.JoinToken, code, guestConnID, guestLang string) error {
	// A retry of the same redemption must not create a second room.
	if roomID, mapped, err := getConnRoom(ctx, s.store, guestConnID); err != nil {
		return err
	} else if mapped {
		existing, found, err := getRoom(ctx, s.store, roomID)
		if err != nil {
			return err
		}
		if found && existing.PendingHost && existing.JoinCode == code {
			s.registry.Send(guestConnID, model.EventWaitingForHost, model.WaitingForHostPayload{
				Token:  code,
				RoomID: existing.ID,
			})
			return nil
		}
	}

	room := &model.Room{
		ID:          uuid.NewString(),
		Host:        model.Participant{Language: tok.IssuerLanguage},
		Guest:       model.Participant{ConnID: guestConnID, Language: guestLang},
		PendingHost: true,
		JoinCode:    code,
		CreatedAt:   time.Now().UTC(),
	}

	if err := putJSON(ctx, s.store, store.RoomKey(room.ID), room, s.roomTTL); err != nil {
		return err
	}
	if err := s.mapConn(ctx, guestConnID, room.ID); err != nil {
		return err
	}

	// Token stays valid so the issuer's bind can find this room.
	s.registry.Send(guestConnID, model.EventWaitingForHost, model.WaitingForHostPayload{
		Token:  code,
		RoomID: room.ID,
	})

	log.Info().
		Str("roomId", room.ID).
		Str("guestConnId", guestConnID).
		Str("code", util.MaskCode(code)).
		Msg("pending room created, waiting for host")
	audit.Log(ctx, audit.Event{
		Type:    audit.EventRoomPending,
		ConnID:  guestConnID,
		RoomID:  room.ID,
		Details: map[string]interface{}{"code": util.MaskCode(code)},
	})

	return nil
}

func (s *PairingService) completePending(ctx context.Context, room *model.Room, code, hostConnID, hostLang string) error {
	room.Host = model.Participant{ConnID: hostConnID, Language: hostLang}
	room.PendingHost = false
	room.JoinCode = ""

	if err := putJSON(ctx, s.store, store.RoomKey(room.ID), room, s.roomTTL); err != nil {
		return err
	}
	if err := s.mapConn(ctx, hostConnID, room.ID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.TokenKey(code)); err != nil {
		log.Warn().Err(err).Str("code", util.MaskCode(code)).Msg("failed to delete redeemed token")
	}

	s.notifyPaired(room)
	s.archive.RoomPaired(ctx, room.ID, room.Host.Language, room.Guest.Language)

	log.Info().
		Str("roomId", room.ID).
		Str("hostConnId", hostConnID).
		Str("guestConnId", room.Guest.ConnID).
		Msg("pending room completed by issuer bind")
	audit.Log(ctx, audit.Event{
		Type:   audit.EventTokenRedeemed,
		ConnID: hostConnID,
		RoomID: room.ID,
		Details: map[string]interface{}{
			"code":          util.MaskCode(code),
			"hostLanguage":  room.Host.Language,
			"guestLanguage": room.Guest.Language,
		},
	})

	return nil
}

// findPendingRoom scans active rooms for one still waiting on this code.
// O(active rooms); fine at the scale one instance serves.
func (s *PairingService) findPendingRoom(ctx context.Context, code string) (*model.Room, error) {
	keys, err := s.store.Keys(ctx, store.RoomKeyPrefix)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	for _, key := range keys {
		var room model.Room
		found, err := getJSON(ctx, s.store, key, &room)
		if err != nil {
			return nil, err
		}
		if found && room.PendingHost && room.JoinCode == code {
			return &room, nil
		}
	}
	return nil, nil
}

func (s *PairingService) mapConn(ctx context.Context, connID, roomID string) error {
	if err := s.store.Put(ctx, store.ConnKey(connID), []byte(roomID), s.roomTTL); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

// notifyPaired tells each side the other's language. Delivery is
// best-effort; an unresolved side simply misses the event.
func (s *PairingService) notifyPaired(room *model.Room) {
	if !s.registry.Send(room.Host.ConnID, model.EventJoinedRoom, model.JoinedRoomPayload{
		RoomID:          room.ID,
		PartnerLanguage: room.Guest.Language,
	}) {
		log.Warn().Str("roomId", room.ID).Str("connId", room.Host.ConnID).Msg("host offline for joinedRoom event")
	}
	if !s.registry.Send(room.Guest.ConnID, model.EventJoinedRoom, model.JoinedRoomPayload{
		RoomID:          room.ID,
		PartnerLanguage: room.Host.Language,
	}) {
		log.Warn().Str("roomId", room.ID).Str("connId", room.Guest.ConnID).Msg("guest offline for joinedRoom event")
	}
}

func generateJoinCode() string {
	chars := []byte(joinCodeChars)
	part1 := make([]byte, 4)
	part2 := make([]byte, 4)

	for i := 0; i < 4; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		part1[i] = chars[n.Int64()]
	}
	for i := 0; i < 4; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		part2[i] = chars[n.Int64()]
	}

	return fmt.Sprintf("%s-%s", string(part1), string(part2))
}
