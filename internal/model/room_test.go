package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomSlots(t *testing.T) {
	room := &Room{
		ID:    "r1",
		Host:  Participant{ConnID: "c1", Language: "en"},
		Guest: Participant{ConnID: "c2", Language: "es"},
	}

	t.Run("resolves host slot", func(t *testing.T) {
		me, partner, ok := room.Slots("c1")
		require.True(t, ok)
		assert.Equal(t, "en", me.Language)
		assert.Equal(t, "c2", partner.ConnID)
	})

	t.Run("resolves guest slot", func(t *testing.T) {
		me, partner, ok := room.Slots("c2")
		require.True(t, ok)
		assert.Equal(t, "es", me.Language)
		assert.Equal(t, "c1", partner.ConnID)
	})

	t.Run("unknown connection is not a member", func(t *testing.T) {
		_, _, ok := room.Slots("c3")
		assert.False(t, ok)
	})

	t.Run("empty connection id never matches a cleared slot", func(t *testing.T) {
		cleared := &Room{
			ID:    "r2",
			Host:  Participant{Language: "en"},
			Guest: Participant{ConnID: "c2", Language: "es"},
		}
		_, _, ok := cleared.Slots("")
		assert.False(t, ok)
	})

	t.Run("mutating the returned slot mutates the room", func(t *testing.T) {
		r := &Room{
			Host:  Participant{ConnID: "c1", Language: "en"},
			Guest: Participant{ConnID: "c2", Language: "es"},
		}
		me, _, ok := r.Slots("c1")
		require.True(t, ok)
		me.ConnID = ""
		assert.Empty(t, r.Host.ConnID)
	})
}
