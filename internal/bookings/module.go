// Package bookings provides the booking bounded context module.
package bookings

import (
	"fleet_portal_backend/internal/bookings/handler"
	"fleet_portal_backend/internal/bookings/repository"
	"fleet_portal_backend/internal/bookings/service"
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	apphttp "fleet_portal_backend/internal/http"
	"fleet_portal_backend/platform/logger"
	"fleet_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the bookings module with all its dependencies.
func NewModule(pool *pgxpool.Pool, mail email.Sender, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, mail, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// Service returns the booking service for use by the reminder pipeline.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts booking routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/bookings")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/confirm", m.handler.Confirm)
	group.POST("/:id/assign", m.handler.Assign)
	group.POST("/:id/start", m.handler.Start)
	group.POST("/:id/complete", m.handler.Complete)
	group.POST("/:id/cancel", m.handler.Cancel)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
