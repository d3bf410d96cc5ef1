// Package identity provides the admin account bounded context module.
package identity

import (
	"fleet_portal_backend/internal/identity/handler"
	"fleet_portal_backend/internal/identity/repository"
	"fleet_portal_backend/internal/identity/service"
	apphttp "fleet_portal_backend/internal/http"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the identity module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// Service returns the identity service for use by other modules
// (e.g., the notification fan-out needs the admin list).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts identity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/login", m.handler.Login)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)

	ctx.Admin.POST("/users", m.handler.CreateAdmin)
	ctx.Admin.GET("/users", m.handler.ListAdmins)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
