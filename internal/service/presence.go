package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/audit"
	"github.com/lingolink/relay-server-go/internal/model"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/store"
)

// PresenceService tears down session state when a connection goes away.
//
// Teardown policy: retain-with-TTL. When a partner remains, only the
// leaver's slot is cleared and the room survives until its TTL runs out;
// the room is deleted outright once the last populated slot empties.
type PresenceService struct {
	store    store.Store
	registry *registry.Registry
	archive  archive.Recorder
	roomTTL  time.Duration
}

func NewPresenceService(s store.Store, reg *registry.Registry, rec archive.Recorder, roomTTL time.Duration) *PresenceService {
	return &PresenceService{
		store:    s,
		registry: reg,
		archive:  rec,
		roomTTL:  roomTTL,
	}
}

// OnDisconnect is best-effort throughout: every step runs regardless of
// earlier failures, and nothing is ever surfaced to the departed client.
// Invoking it twice for the same connection is a no-op the second time.
func (s *PresenceService) OnDisconnect(ctx context.Context, connID string) {
	roomID, mapped, err := getConnRoom(ctx, s.store, connID)
	if err != nil {
		log.Error().Err(err).Str("connId", connID).Msg("disconnect: failed to resolve room mapping")
		return
	}
	if !mapped {
		return
	}

	if err := s.store.Delete(ctx, store.ConnKey(connID)); err != nil {
		log.Error().Err(err).Str("connId", connID).Msg("disconnect: failed to delete connection mapping")
	}

	room, found, err := getRoom(ctx, s.store, roomID)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Msg("disconnect: failed to load room")
		return
	}
	if !found {
		return
	}

	me, partner, ok := room.Slots(connID)
	if !ok {
		// Stale mapping; the slot was already cleared by an earlier pass.
		return
	}

	if partner.ConnID != "" {
		if !s.registry.Send(partner.ConnID, model.EventPartnerLeft, struct{}{}) {
			log.Debug().
				Str("roomId", room.ID).
				Str("connId", partner.ConnID).
				Msg("partner offline for partnerLeft event")
		}

		me.ConnID = ""
		if err := putJSON(ctx, s.store, store.RoomKey(room.ID), room, s.roomTTL); err != nil {
			log.Error().Err(err).Str("roomId", room.ID).Msg("disconnect: failed to clear participant slot")
		}

		log.Info().
			Str("roomId", room.ID).
			Str("connId", connID).
			Msg("participant left, partner notified")
		audit.Log(ctx, audit.Event{
			Type:   audit.EventPartnerLeft,
			ConnID: connID,
			RoomID: room.ID,
		})
		return
	}

	// No one left to notify or reconnect to.
	if err := s.store.Delete(ctx, store.RoomKey(room.ID)); err != nil {
		log.Error().Err(err).Str("roomId", room.ID).Msg("disconnect: failed to delete room")
	}
	s.archive.RoomClosed(ctx, room.ID)

	log.Info().
		Str("roomId", room.ID).
		Str("connId", connID).
		Msg("room closed")
	audit.Log(ctx, audit.Event{
		Type:   audit.EventRoomClosed,
		ConnID: connID,
		RoomID: room.ID,
	})
}
