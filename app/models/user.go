package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER      = "USER"
	ROLE_ADMIN     = "ADMIN"
	ROLE_MODERATOR = "MODERATOR"
	STATUS_ACTIVE  = "ACTIVE"
	STATUS_BANNED  = "BANNED"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email       string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Password    string         `gorm:"type:text" json:"-"`
	Role        string         `gorm:"type:varchar(20);default:'USER'" json:"role" validate:"oneof=USER ADMIN MODERATOR"`
	Status      string         `gorm:"type:varchar(20);default:'ACTIVE'" json:"status" validate:"oneof=ACTIVE BANNED"`
	AvatarURL   string         `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	Phone       string         `gorm:"type:varchar(30);default:null" json:"phone,omitempty"`
	LastLoginAt *time.Time     `gorm:"default:null" json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     ROLE_USER,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsValidRole reports whether role is one of the recognized account roles.
func IsValidRole(role string) bool {
	switch role {
	case ROLE_USER, ROLE_ADMIN, ROLE_MODERATOR:
		return true
	}
	return false
}

// IsValidStatus reports whether status is one of the recognized account states.
func IsValidStatus(status string) bool {
	return status == STATUS_ACTIVE || status == STATUS_BANNED
}

func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

func (u *User) IsBanned() bool {
	return u.Status == STATUS_BANNED
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
