package moderation

import (
	"context"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

// RecentActivityLimit bounds the listing and report previews of a user profile.
const RecentActivityLimit = 5

// UserProfile is a user with bounded recent activity and aggregate counts.
type UserProfile struct {
	User           *models.User
	RecentListings []models.Listing
	RecentReports  []models.TechnicalReport
	Stats          repository.UserStats
}

func (s *Service) ListUsers(identity string, filter repository.UserFilter) ([]models.User, int64, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, 0, err
	}
	if filter.Role != "" && !models.IsValidRole(filter.Role) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid role %q", filter.Role)
	}
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid status %q", filter.Status)
	}

	users, total, err := s.users.List(filter)
	if err != nil {
		return nil, 0, apperror.NewUnexpected("failed to list users", err)
	}
	return users, total, nil
}

func (s *Service) GetUserProfile(identity string, id uint) (*UserProfile, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}

	listings, err := s.listings.GetByUserID(id, 0, RecentActivityLimit)
	if err != nil {
		return nil, apperror.NewUnexpected("failed to load listings", err)
	}
	reports, err := s.reports.GetByUserID(id, 0, RecentActivityLimit)
	if err != nil {
		return nil, apperror.NewUnexpected("failed to load reports", err)
	}
	stats, err := s.users.GetStatsByUserID(id)
	if err != nil {
		return nil, apperror.NewUnexpected("failed to load user stats", err)
	}

	return &UserProfile{
		User:           user,
		RecentListings: listings,
		RecentReports:  reports,
		Stats:          *stats,
	}, nil
}

// ModerateUser applies cmd to the account with id. Admins cannot ban or demote themselves.
func (s *Service) ModerateUser(ctx context.Context, identity string, id uint, cmd Command) (*models.User, error) {
	admin, err := s.guard.RequireAdmin(identity)
	if err != nil {
		return nil, err
	}

	action, err := ParseUserAction(cmd.Action)
	if err != nil {
		return nil, err
	}

	// Validate against a scratch copy so argument errors surface before the store is touched.
	var scratch models.User
	if err := ApplyUserAction(&scratch, action, cmd); err != nil {
		return nil, err
	}

	if admin.ID == id {
		if scratch.Status == models.STATUS_BANNED {
			return nil, apperror.NewValidation("you cannot ban your own account")
		}
		if scratch.Role != "" && scratch.Role != models.ROLE_ADMIN {
			return nil, apperror.NewValidation("you cannot remove your own admin role")
		}
	}

	user, err := s.users.Modify(id, func(u *models.User) error {
		return ApplyUserAction(u, action, cmd)
	})
	if err != nil {
		return nil, apperror.FromStore(err, "User not found")
	}

	s.record("user", string(action), admin, id)
	s.notifier.AccountChanged(ctx, user, action)
	return user, nil
}
