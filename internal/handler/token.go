package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/lingolink/relay-server-go/internal/errors"
	"github.com/lingolink/relay-server-go/internal/httputil"
	"github.com/lingolink/relay-server-go/internal/service"
)

// TokenHandler issues join tokens over plain HTTP, for issuers that want a
// QR code before opening their websocket. Tokens issued here are unbound
// and carry the longer TTL.
type TokenHandler struct {
	pairingService *service.PairingService
}

func NewTokenHandler(pairingService *service.PairingService) *TokenHandler {
	return &TokenHandler{pairingService: pairingService}
}

func (h *TokenHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Issue)
	return r
}

// POST /v1/tokens
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("body", "invalid JSON"))
		return
	}

	result, err := h.pairingService.IssueToken(r.Context(), req.Language, "")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}
