package models

import "time"

const (
	DeviceTypeSmartphone = "SMARTPHONE"
	DeviceTypeTablet     = "TABLET"
	DeviceTypeWatch      = "SMARTWATCH"
)

// Device is the catalog entry a listing sells.
type Device struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Brand     string    `gorm:"type:varchar(100);index" json:"brand"`
	Model     string    `gorm:"type:varchar(150);index" json:"model"`
	Type      string    `gorm:"type:varchar(20);default:'SMARTPHONE'" json:"type"`
	Storage   string    `gorm:"type:varchar(20)" json:"storage"`
	Color     string    `gorm:"type:varchar(50)" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DisplayName returns "Brand Model" for use in emails and notices.
func (d Device) DisplayName() string {
	if d.Brand == "" {
		return d.Model
	}
	return d.Brand + " " + d.Model
}
