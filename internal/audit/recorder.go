// Package audit keeps a durable trail of admin mutations on the directory.
package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes records into audit_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists one audit entry. The actor is the caller's external
// identity id; entityID is the internal record id the action touched.
func (r *Recorder) Record(ctx context.Context, actorExternalID, action, entityID string, meta map[string]any) error {
	if r == nil {
		return errors.New("audit recorder not initialised")
	}
	if actorExternalID == "" || action == "" || entityID == "" {
		return errors.New("audit record requires actor/action/entity_id")
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_external_id, action, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, NOW())`,
		actorExternalID, action, entityID, metaJSON)
	return err
}
