// Package reminders provides the scheduled notification pipeline module.
package reminders

import (
	apphttp "fleet_portal_backend/internal/http"
	"fleet_portal_backend/internal/reminders/handler"
	"fleet_portal_backend/internal/reminders/service"
	"fleet_portal_backend/platform/logger"
)

// Module is the reminder pipeline module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the pipeline over the quotation, booking, and
// notification services.
func NewModule(svc *service.Service, log *logger.Logger) *Module {
	return &Module{
		handler: handler.New(svc, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reminders"
}

// Service returns the pipeline service for the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the job trigger route behind the service key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Jobs.POST("/scheduled-notifications", m.handler.RunScheduledNotifications)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
