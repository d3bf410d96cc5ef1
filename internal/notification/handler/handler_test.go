package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleet_portal_backend/internal/notification/inapp"
	"fleet_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeService struct {
	items      []inapp.Notification
	total      int
	unread     int
	markedRead []uuid.UUID
	deleted    []uuid.UUID
	allRead    bool

	gotLimit  int
	gotOffset int
}

func (f *fakeService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]inapp.Notification, int, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.items, f.total, nil
}

func (f *fakeService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.unread, nil
}

func (f *fakeService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	f.markedRead = append(f.markedRead, notificationID)
	return nil
}

func (f *fakeService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	f.allRead = true
	return nil
}

func (f *fakeService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	f.deleted = append(f.deleted, notificationID)
	return nil
}

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set(httpkit.ContextUserIDKey, uuid.New())
	c.Set(httpkit.ContextRolesKey, []string{"admin"})
	return c, rec
}

func TestList_ReturnsNotificationsAndTotal(t *testing.T) {
	svc := &fakeService{
		items: []inapp.Notification{{
			ID:        uuid.New(),
			Type:      "booking_created",
			Title:     "New Booking",
			Message:   "Booking BK-000042 created",
			CreatedAt: time.Now().UTC(),
		}},
		total: 7,
	}
	h := New(svc)

	c, rec := testContext(t, http.MethodGet, "/notifications?limit=5&offset=10")
	h.List(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.gotLimit != 5 || svc.gotOffset != 10 {
		t.Fatalf("limit/offset = %d/%d, want 5/10", svc.gotLimit, svc.gotOffset)
	}

	var body struct {
		Notifications []inapp.Notification `json:"notifications"`
		Total         int                  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 7 || len(body.Notifications) != 1 {
		t.Fatalf("total = %d, items = %d", body.Total, len(body.Notifications))
	}
}

func TestList_RequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications", nil)

	New(&fakeService{}).List(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMarkRead_RejectsMalformedID(t *testing.T) {
	svc := &fakeService{}
	h := New(svc)

	c, rec := testContext(t, http.MethodPost, "/notifications/nope/read")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.MarkRead(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(svc.markedRead) != 0 {
		t.Fatalf("service must not be called for a malformed id")
	}
}

func TestMarkRead_Succeeds(t *testing.T) {
	svc := &fakeService{}
	h := New(svc)

	notifID := uuid.New()
	c, rec := testContext(t, http.MethodPost, "/notifications/"+notifID.String()+"/read")
	c.Params = gin.Params{{Key: "id", Value: notifID.String()}}
	h.MarkRead(c)
	c.Writer.WriteHeaderNow()

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(svc.markedRead) != 1 || svc.markedRead[0] != notifID {
		t.Fatalf("marked = %v, want [%s]", svc.markedRead, notifID)
	}
}
