package archive

import (
	"context"
	"time"
)

// Recorder captures room lifecycle milestones for operational stats. No
// message contents and no participant identity ever reach the archive;
// rows carry only the room id, the language pair and timestamps.
//
// All writes are best-effort: a failed archive write is logged by the
// implementation and never surfaces to the relay path.
type Recorder interface {
	RoomPaired(ctx context.Context, roomID, hostLang, guestLang string)
	RoomClosed(ctx context.Context, roomID string)
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Noop is the Recorder used when no DATABASE_URL is configured.
type Noop struct{}

func (Noop) RoomPaired(context.Context, string, string, string) {}

func (Noop) RoomClosed(context.Context, string) {}

func (Noop) DeleteOld(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
