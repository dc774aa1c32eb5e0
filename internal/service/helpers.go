package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/lingolink/relay-server-go/internal/errors"
	"github.com/lingolink/relay-server-go/internal/model"
	"github.com/lingolink/relay-server-go/internal/store"
)

func putJSON(ctx context.Context, s store.Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Internal("failed to encode record").WithCause(err)
	}
	if err := s.Put(ctx, key, data, ttl); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func getJSON(ctx context.Context, s store.Store, key string, v any) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil {
		return false, apperrors.StoreUnavailable(err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, apperrors.Internal("failed to decode record").WithCause(err)
	}
	return true, nil
}

func getRoom(ctx context.Context, s store.Store, roomID string) (*model.Room, bool, error) {
	var room model.Room
	found, err := getJSON(ctx, s, store.RoomKey(roomID), &room)
	if err != nil || !found {
		return nil, found, err
	}
	return &room, true, nil
}

// getConnRoom resolves the room id a connection is currently mapped to.
func getConnRoom(ctx context.Context, s store.Store, connID string) (string, bool, error) {
	data, found, err := s.Get(ctx, store.ConnKey(connID))
	if err != nil {
		return "", false, apperrors.StoreUnavailable(err)
	}
	if !found {
		return "", false, nil
	}
	return string(data), true, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func validLanguage(lang string) bool {
	if lang == "" || len(lang) > 16 {
		return false
	}
	for _, c := range lang {
		if (c < 'a' || c > 'z') && c != '-' {
			return false
		}
	}
	return true
}
