// Package adapters bridges module interfaces so bounded contexts stay
// decoupled from each other's packages.
package adapters

import (
	"context"

	identitysvc "fleet_portal_backend/internal/identity/service"
	"fleet_portal_backend/internal/notification"
)

// AdminProvider adapts the identity service to the notification
// fan-out's AdminProvider interface.
type AdminProvider struct {
	identity *identitysvc.Service
}

func NewAdminProvider(identity *identitysvc.Service) *AdminProvider {
	return &AdminProvider{identity: identity}
}

func (p *AdminProvider) ListAdmins(ctx context.Context) ([]notification.Admin, error) {
	users, err := p.identity.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	admins := make([]notification.Admin, 0, len(users))
	for _, u := range users {
		admins = append(admins, notification.Admin{ID: u.ID})
	}
	return admins, nil
}

var _ notification.AdminProvider = (*AdminProvider)(nil)
