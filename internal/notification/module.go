// Package notification provides the admin notification bounded context:
// in-app notifications, the fired-event ledger that deduplicates them,
// and the event bus subscriptions that produce them.
package notification

import (
	"fleet_portal_backend/internal/events"
	apphttp "fleet_portal_backend/internal/http"
	"fleet_portal_backend/internal/notification/handler"
	"fleet_portal_backend/internal/notification/inapp"
	"fleet_portal_backend/internal/notification/ledger"
	"fleet_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *Service
}

// NewModule creates and initializes the notification module and subscribes
// its event handlers on the bus.
func NewModule(pool *pgxpool.Pool, admins AdminProvider, bus events.Bus, log *logger.Logger) *Module {
	store := inapp.NewRepository(pool)
	ledg := ledger.NewRepository(pool)
	svc := NewService(store, ledg, admins, log)

	NewSubscriber(svc, log).Register(bus)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Service returns the notification service for use by other modules
// (the reminder pipeline fires through it).
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications", m.handler.List)
	ctx.Protected.GET("/notifications/unread-count", m.handler.CountUnread)
	ctx.Protected.POST("/notifications/:id/read", m.handler.MarkRead)
	ctx.Protected.POST("/notifications/read-all", m.handler.MarkAllRead)
	ctx.Protected.DELETE("/notifications/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
