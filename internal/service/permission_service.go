package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sacm-dev/sacm-api/internal/authz"
	"github.com/sacm-dev/sacm-api/internal/models"
	"github.com/sacm-dev/sacm-api/internal/repository"
)

// PermissionService resolves the effective permission set for an actor. The
// result is computed once per request and attached to the request context so
// every guard reads the same snapshot.
type PermissionService interface {
	Resolve(ctx context.Context, userID uint) (authz.PermissionSet, error)
	ResolveRole(ctx context.Context, roleID uint) (authz.PermissionSet, error)
}

type permissionService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	logger zerolog.Logger
}

// NewPermissionService constructs the permission resolver.
func NewPermissionService(users repository.UserRepository, roles repository.RoleRepository, logger zerolog.Logger) PermissionService {
	return &permissionService{
		users:  users,
		roles:  roles,
		logger: logger.With().Str("component", "permission_service").Logger(),
	}
}

// Resolve returns the actor's effective permission set. Administrators get
// the unrestricted set; everyone else gets the union of codes attached to
// their role. Unknown or missing actors resolve to the empty set.
func (s *permissionService) Resolve(ctx context.Context, userID uint) (authz.PermissionSet, error) {
	if userID == 0 {
		return authz.Empty(), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Empty(), nil
		}
		return authz.Empty(), err
	}

	if user.Role.Code == models.RoleAdmin {
		return authz.Unrestricted(), nil
	}
	if user.RoleID == 0 {
		return authz.Empty(), nil
	}

	return s.ResolveRole(ctx, user.RoleID)
}

// ResolveRole returns the permission set attached to a role. Admin roles are
// unrestricted.
func (s *permissionService) ResolveRole(ctx context.Context, roleID uint) (authz.PermissionSet, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Empty(), nil
		}
		return authz.Empty(), err
	}

	if role.Code == models.RoleAdmin {
		return authz.Unrestricted(), nil
	}

	codes, err := s.roles.PermissionCodes(ctx, roleID)
	if err != nil {
		return authz.Empty(), err
	}

	return authz.Restricted(codes...), nil
}
