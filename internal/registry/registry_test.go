package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("register then resolve", func(t *testing.T) {
		r := New()
		r.Register("c1")

		assert.True(t, r.Resolve("c1"))
		assert.False(t, r.Resolve("c2"))
		assert.Equal(t, 1, r.Count())
	})

	t.Run("send delivers to the client channel in order", func(t *testing.T) {
		r := New()
		client := r.Register("c1")

		require.True(t, r.Send("c1", "first", map[string]string{"n": "1"}))
		require.True(t, r.Send("c1", "second", map[string]string{"n": "2"}))

		ev := <-client.Events
		assert.Equal(t, "first", ev.Type)
		ev = <-client.Events
		assert.Equal(t, "second", ev.Type)

		var data map[string]string
		require.NoError(t, json.Unmarshal(ev.Data, &data))
		assert.Equal(t, "2", data["n"])
	})

	t.Run("send to unregistered connection reports unresolved", func(t *testing.T) {
		r := New()
		assert.False(t, r.Send("ghost", "ev", nil))
	})

	t.Run("unregister closes done and removes the client", func(t *testing.T) {
		r := New()
		client := r.Register("c1")
		r.Unregister("c1")

		select {
		case <-client.Done:
		default:
			t.Fatal("done channel should be closed")
		}
		assert.False(t, r.Resolve("c1"))

		// second unregister is a no-op
		r.Unregister("c1")
	})

	t.Run("re-register replaces the previous endpoint", func(t *testing.T) {
		r := New()
		old := r.Register("c1")
		fresh := r.Register("c1")

		select {
		case <-old.Done:
		default:
			t.Fatal("old endpoint should be closed")
		}

		require.True(t, r.Send("c1", "ev", nil))
		select {
		case <-fresh.Events:
		default:
			t.Fatal("fresh endpoint should receive the event")
		}
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		r := New()
		r.Register("c1")

		for i := 0; i < clientEventBuffer+10; i++ {
			assert.True(t, r.Send("c1", "ev", nil))
		}
	})

	t.Run("close clears all clients", func(t *testing.T) {
		r := New()
		a := r.Register("a")
		b := r.Register("b")
		r.Close()

		<-a.Done
		<-b.Done
		assert.Equal(t, 0, r.Count())
	})
}
