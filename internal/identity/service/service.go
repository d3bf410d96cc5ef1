// Package service implements admin account management and authentication.
package service

import (
	"context"
	"time"

	"fleet_portal_backend/internal/identity/repository"
	"fleet_portal_backend/platform/apperr"
	"fleet_portal_backend/platform/config"
	"fleet_portal_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	opLogin          = "identity.service.login"
	opCreateAdmin    = "identity.service.create_admin"
	opChangePassword = "identity.service.change_password"

	accessTokenType = "access"

	// RoleAdmin grants access to the back-office admin routes.
	RoleAdmin = "admin"
)

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Login verifies credentials and returns a signed access token plus the profile.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, *repository.AdminUser, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials").WithOp(opLogin)
	}

	if !user.IsActive {
		return "", nil, apperr.Forbidden("account is deactivated").WithOp(opLogin)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plainPassword)); err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials").WithOp(opLogin)
	}

	token, err := s.signJWT(user.ID, []string{user.Role})
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err).WithOp(opLogin)
	}

	return token, user, nil
}

// CreateAdmin registers a new back-office account.
func (s *Service) CreateAdmin(ctx context.Context, email, name, rawPhone, plainPassword, role string) (*repository.AdminUser, error) {
	if role == "" {
		role = RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err).WithOp(opCreateAdmin)
	}

	return s.repo.Create(ctx, email, name, phone.NormalizeE164(rawPhone), string(hash), role)
}

// GetMe returns the caller's own profile.
func (s *Service) GetMe(ctx context.Context, id uuid.UUID) (*repository.AdminUser, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAdmins returns every active admin account for notification fan-out.
func (s *Service) ListAdmins(ctx context.Context) ([]repository.AdminUser, error) {
	return s.repo.ListActive(ctx)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperr.Unauthorized("current password is incorrect").WithOp(opChangePassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err).WithOp(opChangePassword)
	}

	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func (s *Service) signJWT(userID uuid.UUID, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
