package models

import "time"

// Evaluation is a user's self-assessment of a device before listing or reporting it.
type Evaluation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	DeviceType     string    `gorm:"type:varchar(20)" json:"device_type"`
	DeviceModel    string    `gorm:"type:varchar(150)" json:"device_model"`
	Storage        string    `gorm:"type:varchar(20)" json:"storage"`
	Condition      string    `gorm:"type:varchar(20)" json:"condition"`
	BatteryHealth  int       `json:"battery_health"`
	EstimatedPrice float64   `gorm:"type:decimal(12,2)" json:"estimated_price"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
