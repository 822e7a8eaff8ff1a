// Package access resolves an authenticated identity to a user and checks its role.
package access

import (
	"errors"
	"strings"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"gorm.io/gorm"
)

type Guard struct {
	users repository.UserRepository
}

func NewGuard(users repository.UserRepository) *Guard {
	return &Guard{users: users}
}

// IsAdmin reports whether identity belongs to an active admin. Unknown
// identities are not admins.
func (g *Guard) IsAdmin(identity string) (bool, error) {
	_, err := g.RequireAdmin(identity)
	if err == nil {
		return true, nil
	}
	if apperror.KindOf(err) == apperror.Unexpected {
		return false, err
	}
	return false, nil
}

// RequireAdmin returns the admin user behind identity. An empty identity is
// Unauthenticated; an unknown, banned or non-admin user is AccessDenied.
func (g *Guard) RequireAdmin(identity string) (*models.User, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, apperror.NewUnauthenticated("login required")
	}

	user, err := g.users.GetByEmail(identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewAccessDenied("Admin access required")
		}
		return nil, apperror.NewUnexpected("failed to resolve user", err)
	}

	if !user.IsAdmin() || user.IsBanned() {
		return nil, apperror.NewAccessDenied("Admin access required")
	}
	return user, nil
}
