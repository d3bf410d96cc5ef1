package notification

import (
	"context"
	"fmt"
	"time"

	"fleet_portal_backend/internal/notification/inapp"
	"fleet_portal_backend/platform/apperr"
	"fleet_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	opFireOnce = "notification.service.fire_once"
)

// Admin is the slice of an admin account the fan-out needs.
type Admin struct {
	ID uuid.UUID
}

// AdminProvider lists the active admin accounts to notify. Implemented
// by an adapter over the identity service so this package does not
// import it.
type AdminProvider interface {
	ListAdmins(ctx context.Context) ([]Admin, error)
}

// Ledger is the dedup gate for fired notification events.
type Ledger interface {
	TryClaim(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error)
	Seen(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error)
	Release(ctx context.Context, eventType string, relatedID uuid.UUID) error
}

// Store persists in-app notification rows.
type Store interface {
	CreateBatch(ctx context.Context, batch []inapp.CreateParams) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]inapp.Notification, int, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	store  Store
	ledger Ledger
	admins AdminProvider
	log    *logger.Logger
}

func NewService(store Store, ledg Ledger, admins AdminProvider, log *logger.Logger) *Service {
	return &Service{store: store, ledger: ledg, admins: admins, log: log}
}

// FireOnce fires a notification event exactly once per (type, relatedID):
// it claims the event in the ledger and, when this call wins the claim,
// fans the notification out to every active admin. Returns true when the
// fan-out ran, false when a previous run already handled the event.
//
// A fan-out failure releases the claim so the next run retries.
func (s *Service) FireOnce(ctx context.Context, eventType string, relatedID uuid.UUID, title, message string) (bool, error) {
	claimed, err := s.ledger.TryClaim(ctx, eventType, relatedID)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		s.release(ctx, eventType, relatedID)
		return false, err
	}
	if len(admins) == 0 {
		// Nobody to notify. The claim stands so the event does not
		// fire again once admins exist.
		s.log.Warn("notification fan-out skipped: no active admins",
			"type", eventType, "relatedId", relatedID)
		return true, nil
	}

	batch := make([]inapp.CreateParams, 0, len(admins))
	for _, admin := range admins {
		batch = append(batch, inapp.CreateParams{
			UserID:    admin.ID,
			Type:      eventType,
			RelatedID: relatedID,
			Title:     title,
			Message:   message,
		})
	}

	if err := s.store.CreateBatch(ctx, batch); err != nil {
		s.release(ctx, eventType, relatedID)
		return false, apperr.Internal(fmt.Sprintf("notification fan-out failed: %v", err)).WithOp(opFireOnce)
	}

	return true, nil
}

// Seen reports whether an event already fired without claiming it.
func (s *Service) Seen(ctx context.Context, eventType string, relatedID uuid.UUID) (bool, error) {
	return s.ledger.Seen(ctx, eventType, relatedID)
}

func (s *Service) release(ctx context.Context, eventType string, relatedID uuid.UUID) {
	if err := s.ledger.Release(ctx, eventType, relatedID); err != nil {
		s.log.Error("notification event release failed",
			"type", eventType, "relatedId", relatedID, "error", err)
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]inapp.Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.store.Delete(ctx, userID, notificationID)
}

// DeleteReadBefore prunes read notifications older than the cutoff.
// Ledger rows are never pruned; they are the idempotency record.
func (s *Service) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.store.DeleteReadBefore(ctx, cutoff)
}
