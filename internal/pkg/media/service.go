package media

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
)

// AvatarService stores processed avatars and points the user record at them.
type AvatarService struct {
	store Store
	users repository.UserRepository
}

func NewAvatarService(store Store, users repository.UserRepository) *AvatarService {
	return &AvatarService{store: store, users: users}
}

// Upload validates, processes and stores an avatar for userID.
func (s *AvatarService) Upload(ctx context.Context, userID uint, filename string, data []byte) (*models.User, error) {
	if userID == 0 {
		return nil, apperror.NewUnauthenticated("login required")
	}
	if len(data) == 0 {
		return nil, apperror.NewValidation("avatar file is required")
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperror.Newf(apperror.Validation, "avatar must be at most %d MB", MaxAvatarBytes>>20)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := ValidateImageBySniff(filename, head); err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	processed, err := ProcessAvatar(data)
	if err != nil {
		return nil, apperror.Wrap(apperror.Validation, "avatar image could not be read", err)
	}

	key := fmt.Sprintf("avatars/%d/%s.jpg", userID, uuid.New().String())
	url, err := s.store.Put(ctx, key, processed, "image/jpeg")
	if err != nil {
		return nil, apperror.NewUnexpected("failed to store avatar", err)
	}

	user, err := s.users.Modify(userID, func(u *models.User) error {
		u.AvatarURL = url
		return nil
	})
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Warnf("[Media] failed to remove orphaned avatar %s: %v", key, derr)
		}
		return nil, apperror.FromStore(err, "User not found")
	}

	log.Infof("[Media] user %d uploaded avatar to %s (%s)", userID, url, s.store.Name())
	return user, nil
}
