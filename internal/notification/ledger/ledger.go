// Package ledger records which (type, related_id) notification events
// have fired. The primary key makes re-runs of the reminder pipeline
// idempotent: an insert that hits the conflict is the dedup signal.
package ledger

import (
	"context"
	"fmt"

	"fleet_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opTryClaim = "notification.ledger.try_claim"
	opSeen     = "notification.ledger.seen"
	opRelease  = "notification.ledger.release"

	errLedgerNotConfigured = "notification event ledger not configured"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TryClaim atomically records that the event fired. Returns true when
// this call inserted the row, false when a previous run already claimed
// it. Concurrent overlapping runs resolve at the unique constraint, so
// exactly one caller observes true.
func (r *Repository) TryClaim(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errLedgerNotConfigured).WithOp(opTryClaim)
	}
	if eventType == "" || relatedID == uuid.Nil {
		return false, apperr.Validation("type and relatedId are required").WithOp(opTryClaim)
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notification_events (type, related_id)
		VALUES ($1, $2)
		ON CONFLICT (type, related_id) DO NOTHING
	`, eventType, relatedID)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("claim notification event failed: %v", err)).WithOp(opTryClaim)
	}

	return tag.RowsAffected() > 0, nil
}

// Seen reports whether the event already fired, without claiming it.
// The email path checks this before attempting a send so a failed send
// leaves no claim behind and is retried on the next run.
func (r *Repository) Seen(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errLedgerNotConfigured).WithOp(opSeen)
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_events WHERE type = $1 AND related_id = $2
		)
	`, eventType, relatedID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("check notification event failed: %v", err)).WithOp(opSeen)
	}

	return exists, nil
}

// Release removes a claim. Used as compensation when the fan-out insert
// fails after a successful claim, so the event fires again next run.
func (r *Repository) Release(ctx context.Context, eventType string, relatedID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errLedgerNotConfigured).WithOp(opRelease)
	}

	_, err := r.pool.Exec(ctx, `
		DELETE FROM notification_events WHERE type = $1 AND related_id = $2
	`, eventType, relatedID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("release notification event failed: %v", err)).WithOp(opRelease)
	}

	return nil
}
