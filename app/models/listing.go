package models

import "time"

const (
	ListingStatusActive   = "ACTIVE"
	ListingStatusInactive = "INACTIVE"
	ListingStatusSold     = "SOLD"
	ListingStatusReserved = "RESERVED"

	ModerationPending  = "PENDING"
	ModerationApproved = "APPROVED"
	ModerationRejected = "REJECTED"

	ConditionNew     = "NEW"
	ConditionLikeNew = "LIKE_NEW"
	ConditionGood    = "GOOD"
	ConditionFair    = "FAIR"
	ConditionPoor    = "POOR"
)

type Listing struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	DeviceID         uint       `gorm:"index;not null" json:"device_id"`
	Device           Device     `gorm:"foreignKey:DeviceID" json:"device"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	User             User       `gorm:"foreignKey:UserID" json:"user"`
	Title            string     `gorm:"type:varchar(200)" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Condition        string     `gorm:"type:varchar(20)" json:"condition" validate:"oneof=NEW LIKE_NEW GOOD FAIR POOR"`
	Price            float64    `gorm:"type:decimal(12,2)" json:"price" validate:"gte=0"`
	Status           string     `gorm:"type:varchar(20);default:'ACTIVE';index" json:"status" validate:"oneof=ACTIVE INACTIVE SOLD RESERVED"`
	ModerationStatus string     `gorm:"type:varchar(20);default:'PENDING';index" json:"moderation_status" validate:"oneof=PENDING APPROVED REJECTED"`
	RejectionReason  *string    `gorm:"type:text" json:"rejection_reason"`
	Featured         bool       `gorm:"default:false;index" json:"featured"`
	Views            int64      `gorm:"default:0" json:"views"`
	Location         string     `gorm:"type:varchar(150)" json:"location"`
	ModeratedAt      *time.Time `json:"moderated_at"`
	ModeratedByID    *uint      `gorm:"index" json:"moderated_by_id"`
	ModeratedBy      *User      `gorm:"foreignKey:ModeratedByID" json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Conversations []Conversation `gorm:"foreignKey:ListingID" json:"-"`
	Transactions  []Transaction  `gorm:"foreignKey:ListingID" json:"-"`
}

func (l *Listing) IsApproved() bool {
	return l.ModerationStatus == ModerationApproved
}

func (l *Listing) IsRejected() bool {
	return l.ModerationStatus == ModerationRejected
}

// IsPubliclyVisible reports whether buyers may see the listing.
func (l *Listing) IsPubliclyVisible() bool {
	return l.IsApproved() && (l.Status == ListingStatusActive || l.Status == ListingStatusReserved)
}

// IsValidModerationStatus is used by list filters.
func IsValidModerationStatus(s string) bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

func IsValidListingStatus(s string) bool {
	switch s {
	case ListingStatusActive, ListingStatusInactive, ListingStatusSold, ListingStatusReserved:
		return true
	}
	return false
}
