package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/store"
)

func TestPruneOrphanedMappings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	job := NewCleanupJob(st, archive.Noop{}, time.Minute)

	// live room with a healthy mapping
	require.NoError(t, st.Put(ctx, store.RoomKey("r1"), []byte(`{}`), time.Hour))
	require.NoError(t, st.Put(ctx, store.ConnKey("c1"), []byte("r1"), time.Hour))

	// mapping to a room that no longer exists
	require.NoError(t, st.Put(ctx, store.ConnKey("c2"), []byte("gone"), time.Hour))

	pruned, err := job.pruneOrphanedMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, found, err := st.Get(ctx, store.ConnKey("c1"))
	require.NoError(t, err)
	assert.True(t, found, "healthy mapping must survive")

	_, found, err = st.Get(ctx, store.ConnKey("c2"))
	require.NoError(t, err)
	assert.False(t, found, "orphaned mapping must be pruned")
}

func TestPruneOrphanedMappingsEmptyStore(t *testing.T) {
	job := NewCleanupJob(store.NewMemoryStore(), archive.Noop{}, time.Minute)

	pruned, err := job.pruneOrphanedMappings(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
