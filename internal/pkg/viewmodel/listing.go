package viewmodel

import (
	"time"

	"github.com/celumarket/celumarket/app/models"
)

type Device struct {
	ID      uint   `json:"id"`
	Brand   string `json:"brand"`
	Model   string `json:"model"`
	Type    string `json:"type"`
	Storage string `json:"storage"`
	Color   string `json:"color"`
}

// Listing is the curated listing shape returned by admin and user endpoints.
type Listing struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Condition        string    `json:"condition"`
	Price            float64   `json:"price"`
	Status           string    `json:"status"`
	ModerationStatus string    `json:"moderation_status"`
	RejectionReason  *string   `json:"rejection_reason"`
	Featured         bool      `json:"featured"`
	Views            int64     `json:"views"`
	Location         string    `json:"location"`
	ModeratedAt      *string   `json:"moderated_at"`
	ModeratedByID    *uint     `json:"moderated_by_id"`
	CreatedAt        time.Time `json:"created_at"`
	Device           Device    `json:"device"`
	Owner            Owner     `json:"owner"`
}

func NewListing(l *models.Listing) Listing {
	return Listing{
		ID:               l.ID,
		Title:            l.Title,
		Description:      l.Description,
		Condition:        l.Condition,
		Price:            l.Price,
		Status:           l.Status,
		ModerationStatus: l.ModerationStatus,
		RejectionReason:  l.RejectionReason,
		Featured:         l.Featured,
		Views:            l.Views,
		Location:         l.Location,
		ModeratedAt:      FormatTimePtr(l.ModeratedAt),
		ModeratedByID:    l.ModeratedByID,
		CreatedAt:        l.CreatedAt,
		Device: Device{
			ID:      l.Device.ID,
			Brand:   l.Device.Brand,
			Model:   l.Device.Model,
			Type:    l.Device.Type,
			Storage: l.Device.Storage,
			Color:   l.Device.Color,
		},
		Owner: NewOwner(l.User),
	}
}

func NewListings(listings []models.Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for i := range listings {
		out = append(out, NewListing(&listings[i]))
	}
	return out
}

// Report is the curated technical report shape.
type Report struct {
	ID                 uint      `json:"id"`
	ReportNumber       string    `json:"report_number"`
	DeviceType         string    `json:"device_type"`
	DeviceModel        string    `json:"device_model"`
	Storage            string    `json:"storage"`
	Color              string    `json:"color"`
	ReportType         string    `json:"report_type"`
	Status             string    `json:"status"`
	IsValidated        bool      `json:"is_validated"`
	InvalidationReason *string   `json:"invalidation_reason"`
	BatteryHealth      int       `json:"battery_health"`
	EstimatedPrice     float64   `json:"estimated_price"`
	EvaluationID       *uint     `json:"evaluation_id"`
	ValidatedAt        *string   `json:"validated_at"`
	ValidatedByID      *uint     `json:"validated_by_id"`
	CreatedAt          time.Time `json:"created_at"`
	Owner              Owner     `json:"owner"`
}

func NewReport(r *models.TechnicalReport) Report {
	return Report{
		ID:                 r.ID,
		ReportNumber:       r.ReportNumber,
		DeviceType:         r.DeviceType,
		DeviceModel:        r.DeviceModel,
		Storage:            r.Storage,
		Color:              r.Color,
		ReportType:         r.ReportType,
		Status:             r.Status,
		IsValidated:        r.IsValidated,
		InvalidationReason: r.InvalidationReason,
		BatteryHealth:      r.BatteryHealth,
		EstimatedPrice:     r.EstimatedPrice,
		EvaluationID:       r.EvaluationID,
		ValidatedAt:        FormatTimePtr(r.ValidatedAt),
		ValidatedByID:      r.ValidatedByID,
		CreatedAt:          r.CreatedAt,
		Owner:              NewOwner(r.User),
	}
}

func NewReports(reports []models.TechnicalReport) []Report {
	out := make([]Report, 0, len(reports))
	for i := range reports {
		out = append(out, NewReport(&reports[i]))
	}
	return out
}
