package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventTokenIssued   EventType = "token_issued"
	EventTokenBound    EventType = "token_bound"
	EventTokenRedeemed EventType = "token_redeemed"
	EventTokenRejected EventType = "token_rejected"
	EventRoomCreated   EventType = "room_created"
	EventRoomPending   EventType = "room_pending"
	EventRoomClosed    EventType = "room_closed"
	EventPartnerLeft   EventType = "partner_left"
)

type Event struct {
	Type    EventType
	ConnID  string
	RoomID  string
	Details map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "pairing").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.ConnID != "" {
		logger = logger.With().Str("conn_id", event.ConnID).Logger()
	}
	if event.RoomID != "" {
		logger = logger.With().Str("room_id", event.RoomID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("pairing audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
