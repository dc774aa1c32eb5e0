package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/config"
	"github.com/lingolink/relay-server-go/internal/store"
)

// CleanupJob periodically prunes state the TTLs alone do not cover:
// connection mappings whose room has already expired, and old archive rows.
type CleanupJob struct {
	store    store.Store
	archive  archive.Recorder
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(s store.Store, rec archive.Recorder, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		store:    s,
		archive:  rec,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runCleanup(ctx, "orphaned connection mappings", j.pruneOrphanedMappings)
	j.runCleanup(ctx, "archive rows", func(ctx context.Context) (int64, error) {
		return j.archive.DeleteOld(ctx, config.ArchiveRetention)
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}

// pruneOrphanedMappings deletes conn mappings pointing at rooms that have
// expired out from under them. Rooms can outlive their TTL refreshes only
// through these mappings, so sweeping them keeps the keyspace bounded.
func (j *CleanupJob) pruneOrphanedMappings(ctx context.Context) (int64, error) {
	keys, err := j.store.Keys(ctx, store.ConnKeyPrefix)
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, key := range keys {
		roomID, found, err := j.store.Get(ctx, key)
		if err != nil {
			return pruned, err
		}
		if !found {
			continue
		}

		_, roomExists, err := j.store.Get(ctx, store.RoomKey(string(roomID)))
		if err != nil {
			return pruned, err
		}
		if roomExists {
			continue
		}

		if err := j.store.Delete(ctx, key); err != nil {
			return pruned, err
		}
		pruned++
		log.Debug().
			Str("connId", strings.TrimPrefix(key, store.ConnKeyPrefix)).
			Str("roomId", string(roomID)).
			Msg("pruned orphaned connection mapping")
	}

	return pruned, nil
}
