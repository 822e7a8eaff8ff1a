package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const (
	ReportTypeBasic    = "BASIC"
	ReportTypeComplete = "COMPLETE"
	ReportTypePremium  = "PREMIUM"

	ReportStatusPending   = "PENDING"
	ReportStatusValidated = "VALIDATED"
	ReportStatusExpired   = "EXPIRED"
)

// TechnicalReport is a condition report generated for a device.
type TechnicalReport struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	ReportNumber       string      `gorm:"uniqueIndex;type:varchar(32)" json:"report_number"`
	UserID             uint        `gorm:"index;not null" json:"user_id"`
	User               User        `gorm:"foreignKey:UserID" json:"user"`
	EvaluationID       *uint       `gorm:"index" json:"evaluation_id"`
	Evaluation         *Evaluation `gorm:"foreignKey:EvaluationID" json:"-"`
	DeviceType         string      `gorm:"type:varchar(20)" json:"device_type"`
	DeviceModel        string      `gorm:"type:varchar(150);index" json:"device_model"`
	Storage            string      `gorm:"type:varchar(20)" json:"storage"`
	Color              string      `gorm:"type:varchar(50)" json:"color"`
	ReportType         string      `gorm:"type:varchar(20);default:'BASIC';index" json:"report_type" validate:"oneof=BASIC COMPLETE PREMIUM"`
	Status             string      `gorm:"type:varchar(20);default:'PENDING';index" json:"status" validate:"oneof=PENDING VALIDATED EXPIRED"`
	IsValidated        bool        `gorm:"default:false;index" json:"is_validated"`
	InvalidationReason *string     `gorm:"type:text" json:"invalidation_reason"`
	BatteryHealth      int         `json:"battery_health"`
	EstimatedPrice     float64     `gorm:"type:decimal(12,2)" json:"estimated_price"`
	ValidatedAt        *time.Time  `json:"validated_at"`
	ValidatedByID      *uint       `gorm:"index" json:"validated_by_id"`
	ValidatedBy        *User       `gorm:"foreignKey:ValidatedByID" json:"-"`
	CreatedAt          time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewReportNumber returns a human facing identifier like "TR-20260412-9F3A1C".
func NewReportNumber(now time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "TR-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func IsValidReportType(s string) bool {
	switch s {
	case ReportTypeBasic, ReportTypeComplete, ReportTypePremium:
		return true
	}
	return false
}

func IsValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusValidated, ReportStatusExpired:
		return true
	}
	return false
}
