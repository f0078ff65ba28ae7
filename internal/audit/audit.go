// Package audit persists the append-only action log. Pure write sink: rows
// are never read back, mutated, or deleted by this service.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Trail writes audit entries to the audit_log table.
type Trail struct {
	pool *pgxpool.Pool
}

// New returns a Trail over pool.
func New(pool *pgxpool.Pool) *Trail {
	return &Trail{pool: pool}
}

// Append records one action. Implements workflow.AuditTrail.
func (t *Trail) Append(ctx context.Context, actorID, actionType, entityID, entityType, description string, at time.Time) error {
	_, err := t.pool.Exec(ctx,
		`INSERT INTO audit_log (actor_id, action_type, entity_id, entity_type, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		actorID, actionType, entityID, entityType, description, at,
	)
	if err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}
