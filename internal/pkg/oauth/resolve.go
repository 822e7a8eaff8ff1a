// Package oauth wires third-party login providers and maps their users onto
// local accounts.
package oauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"gorm.io/gorm"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

// ResolveUser finds the local account for a provider identity by email and
// creates one when none exists. created reports whether a new account was made.
// Banned accounts are AccessDenied.
func ResolveUser(users repository.UserRepository, gu goth.User) (user *models.User, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		// keeps the unique index satisfied for providers that withhold the address
		email = fmt.Sprintf("%s_%s@%s.oauth.local", gu.Provider, gu.UserID, gu.Provider)
	}

	user, err = users.GetByEmail(email)
	switch {
	case err == nil:
		if user.IsBanned() {
			return nil, false, apperror.NewAccessDenied("account is banned")
		}
		return user, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, apperror.NewUnexpected("failed to load user", err)
	}

	// random password; the account is only reachable through the provider
	hash, err := models.HashPassword(uuid.New().String())
	if err != nil {
		return nil, false, apperror.NewUnexpected("failed to hash password", err)
	}

	user = &models.User{
		Name:      firstNonEmpty(gu.Name, gu.NickName, gu.FirstName, "User"),
		Email:     email,
		Password:  hash,
		AvatarURL: gu.AvatarURL,
		Role:      models.ROLE_USER,
		Status:    models.STATUS_ACTIVE,
	}
	if err := users.Create(user); err != nil {
		return nil, false, apperror.NewUnexpected("failed to create user", err)
	}
	return user, true, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
