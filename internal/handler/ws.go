package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/config"
	apperrors "github.com/lingolink/relay-server-go/internal/errors"
	"github.com/lingolink/relay-server-go/internal/model"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/service"
)

// Client frame types.
const (
	frameJoin           = "join"
	frameGenerateToken  = "generateToken"
	frameListenForToken = "listenForToken"
	frameSendMessage    = "sendMessage"
)

type clientFrame struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Language string `json:"language,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Text     string `json:"text,omitempty"`
}

// WSHandler owns the websocket lifecycle: upgrade, connection id assignment,
// the read loop that dispatches client frames, and the single writer that
// drains the registry client's event queue.
type WSHandler struct {
	pairingService  *service.PairingService
	relayService    *service.RelayService
	presenceService *service.PresenceService
	registry        *registry.Registry
	upgrader        websocket.Upgrader
}

func NewWSHandler(
	pairingService *service.PairingService,
	relayService *service.RelayService,
	presenceService *service.PresenceService,
	reg *registry.Registry,
) *WSHandler {
	return &WSHandler{
		pairingService:  pairingService,
		relayService:    relayService,
		presenceService: presenceService,
		registry:        reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Issuer and redeemer reach us from arbitrary origins (the QR
			// code may be scanned by any device), so origin is not checked.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// GET /v1/ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.NewString()
	client := h.registry.Register(connID)

	go h.writePump(conn, client)

	h.registry.Send(connID, model.EventConnected, model.ConnectedPayload{ConnectionID: connID})

	h.readLoop(r.Context(), conn, connID)

	h.registry.Unregister(connID)
	conn.Close()

	// The request context dies with the connection; teardown must not.
	h.presenceService.OnDisconnect(context.Background(), connID)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, connID string) {
	conn.SetReadLimit(config.WSMaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(config.WSPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.WSPongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("connId", connID).Msg("websocket closed unexpectedly")
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(connID, apperrors.InvalidInput("frame", "invalid JSON"))
			continue
		}

		h.dispatch(ctx, connID, frame)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, connID string, frame clientFrame) {
	var err error

	switch frame.Type {
	case frameGenerateToken:
		var result *service.IssueResult
		result, err = h.pairingService.IssueToken(ctx, frame.Language, connID)
		if err == nil {
			h.registry.Send(connID, model.EventTokenGenerated, model.TokenGeneratedPayload{
				Token:     result.Token,
				ExpiresIn: result.ExpiresIn,
			})
		}
	case frameListenForToken:
		err = h.pairingService.BindIssuer(ctx, frame.Token, connID, frame.Language)
	case frameJoin:
		err = h.pairingService.RedeemToken(ctx, frame.Token, connID, frame.Language)
	case frameSendMessage:
		err = h.relayService.RelayMessage(ctx, frame.RoomID, connID, frame.Text)
	default:
		err = apperrors.InvalidInput("type", "unknown frame type")
	}

	if err != nil {
		h.sendError(connID, err)
	}
}

// sendError delivers a failure as an in-band error event; the connection
// itself stays open.
func (h *WSHandler) sendError(connID string, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		log.Error().Err(err).Str("connId", connID).Msg("unexpected error on websocket frame")
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	h.registry.Send(connID, model.EventError, model.ErrorPayload{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

// writePump is the connection's only writer. It serializes queued events
// and keepalive pings onto the wire; any write failure ends the pump and,
// through the closed connection, the read loop as well.
func (h *WSHandler) writePump(conn *websocket.Conn, client *registry.Client) {
	ticker := time.NewTicker(config.WSPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev := <-client.Events:
			conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.Done:
			conn.SetWriteDeadline(time.Now().Add(config.WSWriteTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
