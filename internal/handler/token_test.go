package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/service"
	"github.com/lingolink/relay-server-go/internal/store"
)

func newTokenHandler() *TokenHandler {
	pairing := service.NewPairingService(
		store.NewMemoryStore(),
		registry.New(),
		archive.Noop{},
		time.Minute,
		10*time.Minute,
		time.Hour,
	)
	return NewTokenHandler(pairing)
}

func TestIssueTokenEndpoint(t *testing.T) {
	h := newTokenHandler()

	t.Run("issues an unbound token with the long TTL", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/tokens", strings.NewReader(`{"language":"en"}`))
		rec := httptest.NewRecorder()

		h.Issue(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Token     string `json:"token"`
			ExpiresIn int    `json:"expiresIn"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Regexp(t, regexp.MustCompile(`^[A-Z2-9]{4}-[A-Z2-9]{4}$`), body.Token)
		assert.Equal(t, 600, body.ExpiresIn)
	})

	t.Run("rejects a missing language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/tokens", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		h.Issue(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "MISSING_REQUIRED", body.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/tokens", strings.NewReader(`{"language":`))
		rec := httptest.NewRecorder()

		h.Issue(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
