package models

import (
	"time"
)

const (
	NotificationListingModerated = "listing_moderated"
	NotificationReportModerated  = "report_moderated"
	NotificationAccount          = "account"
	NotificationMessage          = "message"
)

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Type        string    `gorm:"type:varchar(50)" json:"type" validate:"oneof=listing_moderated report_moderated account message"`
	Content     string    `gorm:"type:text" json:"content"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	ReferenceID uint      `json:"reference_id"` // id of the listing, report or conversation
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func NewNotification(userID uint, notificationType string, content string, referenceID uint) *Notification {
	return &Notification{
		UserID:      userID,
		Type:        notificationType,
		Content:     content,
		ReferenceID: referenceID,
	}
}
