package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeMirrorOrphan records an external identity left behind by a
	// partial delete. The handler records it for operator follow-up; it does
	// not retry the provider call.
	TaskTypeMirrorOrphan = "mirror:orphan"
)

// MirrorOrphanPayload describes an orphaned mirrored identity.
type MirrorOrphanPayload struct {
	UserID     string    `json:"user_id"`
	ExternalID string    `json:"external_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMirrorOrphanTask constructs an Asynq task.
func NewMirrorOrphanTask(payload MirrorOrphanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeMirrorOrphan, data), nil
}

// NewMirrorOrphanHandler returns the handler persisting orphan records into
// mirror_orphans.
func NewMirrorOrphanHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload MirrorOrphanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO mirror_orphans (user_id, external_id, reason, occurred_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (external_id) DO UPDATE SET reason = EXCLUDED.reason, occurred_at = EXCLUDED.occurred_at`,
			payload.UserID, payload.ExternalID, payload.Reason, payload.OccurredAt)
		if err != nil {
			return err
		}
		logger.Warn("mirror orphan recorded",
			slog.String("external_id", payload.ExternalID),
			slog.String("reason", payload.Reason))
		return nil
	}
}
