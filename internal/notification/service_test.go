package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fleet_portal_backend/internal/notification/inapp"
	"fleet_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLedger struct {
	claims   map[string]bool
	released []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{claims: make(map[string]bool)}
}

func ledgerKey(eventType string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", eventType, id)
}

func (f *fakeLedger) TryClaim(_ context.Context, eventType string, id uuid.UUID) (bool, error) {
	k := ledgerKey(eventType, id)
	if f.claims[k] {
		return false, nil
	}
	f.claims[k] = true
	return true, nil
}

func (f *fakeLedger) Seen(_ context.Context, eventType string, id uuid.UUID) (bool, error) {
	return f.claims[ledgerKey(eventType, id)], nil
}

func (f *fakeLedger) Release(_ context.Context, eventType string, id uuid.UUID) error {
	k := ledgerKey(eventType, id)
	delete(f.claims, k)
	f.released = append(f.released, k)
	return nil
}

type fakeStore struct {
	batches [][]inapp.CreateParams
	err     error
}

func (f *fakeStore) CreateBatch(_ context.Context, batch []inapp.CreateParams) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeStore) List(context.Context, uuid.UUID, int, int) ([]inapp.Notification, int, error) {
	return nil, 0, nil
}
func (f *fakeStore) CountUnread(context.Context, uuid.UUID) (int, error)     { return 0, nil }
func (f *fakeStore) MarkRead(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (f *fakeStore) MarkAllRead(context.Context, uuid.UUID) error            { return nil }
func (f *fakeStore) Delete(context.Context, uuid.UUID, uuid.UUID) error      { return nil }
func (f *fakeStore) DeleteReadBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeAdmins struct {
	admins []Admin
	err    error
}

func (f *fakeAdmins) ListAdmins(context.Context) ([]Admin, error) {
	return f.admins, f.err
}

func TestFireOnce_FansOutToAllAdmins(t *testing.T) {
	admins := &fakeAdmins{admins: []Admin{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}}
	store := &fakeStore{}
	ledg := newFakeLedger()
	svc := NewService(store, ledg, admins, logger.New("development"))

	relatedID := uuid.New()
	fired, err := svc.FireOnce(context.Background(), TypeQuotationExpiring24h, relatedID, "title", "message")
	if err != nil {
		t.Fatalf("FireOnce: %v", err)
	}
	if !fired {
		t.Fatalf("first FireOnce should fire")
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 3 {
		t.Fatalf("fan-out batch = %v", store.batches)
	}
	for _, p := range store.batches[0] {
		if p.Type != TypeQuotationExpiring24h || p.RelatedID != relatedID {
			t.Fatalf("unexpected batch row: %+v", p)
		}
	}
}

func TestFireOnce_SecondCallIsNoop(t *testing.T) {
	admins := &fakeAdmins{admins: []Admin{{ID: uuid.New()}}}
	store := &fakeStore{}
	svc := NewService(store, newFakeLedger(), admins, logger.New("development"))

	relatedID := uuid.New()
	ctx := context.Background()
	if _, err := svc.FireOnce(ctx, TypeBookingReminder24h, relatedID, "t", "m"); err != nil {
		t.Fatalf("first FireOnce: %v", err)
	}

	fired, err := svc.FireOnce(ctx, TypeBookingReminder24h, relatedID, "t", "m")
	if err != nil {
		t.Fatalf("second FireOnce: %v", err)
	}
	if fired {
		t.Fatalf("second FireOnce must not fire")
	}
	if len(store.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(store.batches))
	}
}

func TestFireOnce_FanOutFailureReleasesClaim(t *testing.T) {
	admins := &fakeAdmins{admins: []Admin{{ID: uuid.New()}}}
	store := &fakeStore{err: errors.New("insert failed")}
	ledg := newFakeLedger()
	svc := NewService(store, ledg, admins, logger.New("development"))

	relatedID := uuid.New()
	ctx := context.Background()
	if _, err := svc.FireOnce(ctx, TypeQuotationExpired, relatedID, "t", "m"); err == nil {
		t.Fatalf("expected fan-out error")
	}
	if len(ledg.released) != 1 {
		t.Fatalf("claim not released after fan-out failure")
	}

	// The next attempt retries from scratch.
	store.err = nil
	fired, err := svc.FireOnce(ctx, TypeQuotationExpired, relatedID, "t", "m")
	if err != nil {
		t.Fatalf("retry FireOnce: %v", err)
	}
	if !fired {
		t.Fatalf("retry should fire after release")
	}
}

func TestFireOnce_NoAdminsKeepsClaim(t *testing.T) {
	admins := &fakeAdmins{}
	store := &fakeStore{}
	ledg := newFakeLedger()
	svc := NewService(store, ledg, admins, logger.New("development"))

	relatedID := uuid.New()
	fired, err := svc.FireOnce(context.Background(), TypeBookingCancelled, relatedID, "t", "m")
	if err != nil {
		t.Fatalf("FireOnce: %v", err)
	}
	if !fired {
		t.Fatalf("event should count as fired even with no recipients")
	}
	if len(store.batches) != 0 {
		t.Fatalf("no batch expected with zero admins")
	}
	seen, err := svc.Seen(context.Background(), TypeBookingCancelled, relatedID)
	if err != nil || !seen {
		t.Fatalf("claim should stand with zero admins")
	}
}
