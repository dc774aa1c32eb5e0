package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_archive (
	room_id        TEXT PRIMARY KEY,
	host_language  TEXT NOT NULL,
	guest_language TEXT NOT NULL,
	paired_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	closed_at      TIMESTAMPTZ
)`

type PostgresRecorder struct {
	db *database.DB
}

func NewPostgresRecorder(db *database.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Migrate creates the archive table if it does not exist.
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresRecorder) RoomPaired(ctx context.Context, roomID, hostLang, guestLang string) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO room_archive (room_id, host_language, guest_language)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id) DO NOTHING
	`, roomID, hostLang, guestLang)
	if err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("failed to archive room pairing")
	}
}

func (r *PostgresRecorder) RoomClosed(ctx context.Context, roomID string) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE room_archive SET closed_at = NOW()
		WHERE room_id = $1 AND closed_at IS NULL
	`, roomID)
	if err != nil {
		log.Warn().Err(err).Str("roomId", roomID).Msg("failed to archive room close")
	}
}

func (r *PostgresRecorder) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM room_archive WHERE paired_at < $1
	`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
