package viewmodel

import (
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/media"
)

// Owner is the part of a user embedded in listings, reports and messages.
type Owner struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func NewOwner(u models.User) Owner {
	return Owner{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: media.AvatarURLFor(u.AvatarURL, u.Email),
	}
}

// User is the account as shown to admins and to the account owner.
type User struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	AvatarURL   string    `json:"avatar_url"`
	Phone       string    `json:"phone,omitempty"`
	LastLoginAt *string   `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUser(u *models.User) User {
	return User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		AvatarURL:   media.AvatarURLFor(u.AvatarURL, u.Email),
		Phone:       u.Phone,
		LastLoginAt: FormatTimePtr(u.LastLoginAt),
		CreatedAt:   u.CreatedAt,
	}
}

func NewUsers(users []models.User) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}
	return out
}

// UserProfile is a user with recent listings, recent reports and counts.
type UserProfile struct {
	User           User                 `json:"user"`
	RecentListings []Listing            `json:"recent_listings"`
	RecentReports  []Report             `json:"recent_reports"`
	Counts         repository.UserStats `json:"counts"`
}
