package controllers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/media"
	"github.com/celumarket/celumarket/internal/pkg/viewmodel"
)

// UserController serves the logged-in user's own data.
type UserController struct {
	repos   *repository.Repositories
	avatars *media.AvatarService
}

func NewUserController(repos *repository.Repositories, avatars *media.AvatarService) *UserController {
	return &UserController{repos: repos, avatars: avatars}
}

// HandleListings returns the caller's listings in every moderation state.
func (uc *UserController) HandleListings(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c)

	listings, err := uc.repos.Listing.GetByUserID(userID, page.Offset(), page.Normalize().Limit)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to load listings", err))
	}
	total, err := uc.repos.Listing.CountByUserID(userID)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to count listings", err))
	}

	return c.JSON(fiber.Map{
		"listings":   viewmodel.NewListings(listings),
		"pagination": viewmodel.NewPage(page, total),
	})
}

// HandleEvaluations returns the caller's device evaluations, newest first.
func (uc *UserController) HandleEvaluations(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c)

	evaluations, total, err := uc.repos.Evaluation.GetByUserID(userID, page.Offset(), page.Normalize().Limit)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to load evaluations", err))
	}

	return c.JSON(fiber.Map{
		"evaluations": evaluations,
		"pagination":  viewmodel.NewPage(page, total),
	})
}

// HandleAvatar replaces the caller's avatar with the multipart "avatar" file.
func (uc *UserController) HandleAvatar(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, apperror.NewValidation("avatar file is required"))
	}
	if fileHeader.Size > media.MaxAvatarBytes {
		return respondError(c, apperror.Newf(apperror.Validation, "avatar must be at most %d MB", media.MaxAvatarBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to open upload", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, media.MaxAvatarBytes+1))
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to read upload", err))
	}

	user, err := uc.avatars.Upload(c.UserContext(), userID, fileHeader.Filename, data)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"avatar_url": user.AvatarURL,
		"user":       viewmodel.NewUser(user),
	})
}

// HandleNotifications returns recent notifications and the unread count.
func (uc *UserController) HandleNotifications(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c)

	notifications, err := uc.repos.Notification.GetByUserID(userID, page.Offset(), page.Normalize().Limit)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to load notifications", err))
	}
	unread, err := uc.repos.Notification.CountUnread(userID)
	if err != nil {
		return respondError(c, apperror.NewUnexpected("failed to count notifications", err))
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (uc *UserController) HandleNotificationsRead(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := uc.repos.Notification.MarkAllRead(userID); err != nil {
		return respondError(c, apperror.NewUnexpected("failed to mark notifications read", err))
	}
	return c.JSON(fiber.Map{"success": true})
}
