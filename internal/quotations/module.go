// Package quotations provides the quotation bounded context module.
package quotations

import (
	"fleet_portal_backend/internal/email"
	"fleet_portal_backend/internal/events"
	apphttp "fleet_portal_backend/internal/http"
	"fleet_portal_backend/internal/quotations/handler"
	"fleet_portal_backend/internal/quotations/repository"
	"fleet_portal_backend/internal/quotations/service"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/logger"
	"fleet_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quotations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the quotations module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.ReminderConfig, mail email.Sender, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, mail, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotations"
}

// Service returns the quotation service for use by the reminder pipeline.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts quotation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/quotations")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/send", m.handler.Send)
	group.POST("/:id/approve", m.handler.Approve)
	group.POST("/:id/reject", m.handler.Reject)
	group.POST("/:id/convert", m.handler.Convert)
	group.POST("/calculate", m.handler.CalculatePrice)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
