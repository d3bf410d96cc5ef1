// Package inapp stores per-user notification rows shown in the dashboard bell.
package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleet_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreateBatch      = "notification.inapp.repository.create_batch"
	opList             = "notification.inapp.repository.list"
	opCountUnread      = "notification.inapp.repository.count_unread"
	opMarkRead         = "notification.inapp.repository.mark_read"
	opMarkAllRead      = "notification.inapp.repository.mark_all_read"
	opDelete           = "notification.inapp.repository.delete"
	opDeleteReadBefore = "notification.inapp.repository.delete_read_before"

	errRepoNotConfigured = "in-app notification repository not configured"
	errUserIDRequired    = "userId is required"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Type      string    `json:"type"`
	RelatedID uuid.UUID `json:"relatedId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateParams struct {
	UserID    uuid.UUID
	Type      string
	RelatedID uuid.UUID
	Title     string
	Message   string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBatch inserts one notification row per recipient. The batch is a
// single statement so a failure leaves no partial fan-out behind.
func (r *Repository) CreateBatch(ctx context.Context, batch []CreateParams) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opCreateBatch)
	}
	if len(batch) == 0 {
		return nil
	}

	userIDs := make([]uuid.UUID, 0, len(batch))
	types := make([]string, 0, len(batch))
	relatedIDs := make([]uuid.UUID, 0, len(batch))
	titles := make([]string, 0, len(batch))
	messages := make([]string, 0, len(batch))
	for _, p := range batch {
		if p.UserID == uuid.Nil {
			return apperr.Validation(errUserIDRequired).WithOp(opCreateBatch)
		}
		if p.Type == "" || p.Title == "" {
			return apperr.Validation("type and title are required").WithOp(opCreateBatch)
		}
		userIDs = append(userIDs, p.UserID)
		types = append(types, p.Type)
		relatedIDs = append(relatedIDs, p.RelatedID)
		titles = append(titles, p.Title)
		messages = append(messages, p.Message)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (user_id, type, related_id, title, message)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::uuid[], $4::text[], $5::text[])
	`, userIDs, types, relatedIDs, titles, messages)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Validation("invalid notification recipient").WithOp(opCreateBatch)
		}
		return apperr.Internal(fmt.Sprintf("batch insert notifications failed: %v", err)).WithOp(opCreateBatch)
	}

	return nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, int, error) {
	if r == nil || r.pool == nil {
		return nil, 0, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	if userID == uuid.Nil {
		return nil, 0, apperr.Validation(errUserIDRequired).WithOp(opList)
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("count notifications failed: %v", err)).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, related_id, title, COALESCE(message, ''), is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Sprintf("list notifications query failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items, err := collectNotifications(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opCountUnread)
	}
	if userID == uuid.Nil {
		return 0, apperr.Validation(errUserIDRequired).WithOp(opCountUnread)
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread notifications failed: %v", err)).WithOp(opCountUnread)
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return apperr.Validation("userId and notificationId are required").WithOp(opMarkRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notification read failed: %v", err)).WithOp(opMarkRead)
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}
	if userID == uuid.Nil {
		return apperr.Validation(errUserIDRequired).WithOp(opMarkAllRead)
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = now()
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark all notifications read failed: %v", err)).WithOp(opMarkAllRead)
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return apperr.Validation("userId and notificationId are required").WithOp(opDelete)
	}

	_, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete notification failed: %v", err)).WithOp(opDelete)
	}

	return nil
}

// DeleteReadBefore prunes read notifications older than the cutoff.
// The retention job calls this; dedup ledger rows are never pruned
// because they are the idempotency record.
func (r *Repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opDeleteReadBefore)
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE is_read = TRUE AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("prune notifications failed: %v", err)).WithOp(opDeleteReadBefore)
	}

	return tag.RowsAffected(), nil
}

func collectNotifications(rows pgx.Rows, capacity int) ([]Notification, error) {
	items := make([]Notification, 0, capacity)
	for rows.Next() {
		var n Notification
		if scanErr := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.RelatedID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notifications failed: %v", scanErr)).WithOp(opList)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", rowsErr)).WithOp(opList)
	}
	return items, nil
}
