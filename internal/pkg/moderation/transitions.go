package moderation

import (
	"html"
	"strings"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
)

var reasonPolicy = bluemonday.StrictPolicy()

// CleanReason strips markup from a free-text reason and trims it.
func CleanReason(reason string) string {
	return strings.TrimSpace(html.UnescapeString(reasonPolicy.Sanitize(reason)))
}

// requireReason returns the cleaned reason or a Validation error when nothing is left.
func requireReason(reason, field string) (string, error) {
	cleaned := CleanReason(reason)
	if cleaned == "" {
		return "", apperror.Newf(apperror.Validation, "%s is required", field)
	}
	return cleaned, nil
}

// ApplyListingAction mutates l for one of the non-delete actions and stamps the
// moderation metadata. On error l is left untouched.
func ApplyListingAction(l *models.Listing, action ListingAction, reason string, adminID uint, now time.Time) error {
	switch action {
	case ListingApprove:
		l.ModerationStatus = models.ModerationApproved
		l.RejectionReason = nil
	case ListingReject:
		cleaned, err := requireReason(reason, "reason")
		if err != nil {
			return err
		}
		l.ModerationStatus = models.ModerationRejected
		l.RejectionReason = &cleaned
		l.Status = models.ListingStatusInactive
	case ListingFeature:
		l.Featured = true
	case ListingUnfeature:
		l.Featured = false
	default:
		return invalidAction(string(action))
	}

	l.ModeratedAt = &now
	l.ModeratedByID = &adminID
	return nil
}

// ApplyReportAction mutates r for validate or invalidate and stamps the
// validation metadata. On error r is left untouched.
func ApplyReportAction(r *models.TechnicalReport, action ReportAction, reason string, adminID uint, now time.Time) error {
	switch action {
	case ReportValidate:
		r.IsValidated = true
		r.InvalidationReason = nil
	case ReportInvalidate:
		cleaned, err := requireReason(reason, "reason")
		if err != nil {
			return err
		}
		r.IsValidated = false
		r.InvalidationReason = &cleaned
		r.Status = models.ReportStatusExpired
	default:
		return invalidAction(string(action))
	}

	r.ValidatedAt = &now
	r.ValidatedByID = &adminID
	return nil
}

// ApplyUserAction mutates u. Role and status values are checked against the
// recognized enums; on error u is left untouched.
func ApplyUserAction(u *models.User, action UserAction, cmd Command) error {
	switch action {
	case UserBan:
		u.Status = models.STATUS_BANNED
	case UserActivate:
		u.Status = models.STATUS_ACTIVE
	case UserChangeRole:
		if !models.IsValidRole(cmd.Role) {
			return apperror.Newf(apperror.Validation, "invalid role %q", cmd.Role)
		}
		u.Role = cmd.Role
	case UserUpdate:
		if cmd.Status == "" && cmd.Role == "" {
			return apperror.NewValidation("status or role is required")
		}
		if cmd.Status != "" && !models.IsValidStatus(cmd.Status) {
			return apperror.Newf(apperror.Validation, "invalid status %q", cmd.Status)
		}
		if cmd.Role != "" && !models.IsValidRole(cmd.Role) {
			return apperror.Newf(apperror.Validation, "invalid role %q", cmd.Role)
		}
		if cmd.Status != "" {
			u.Status = cmd.Status
		}
		if cmd.Role != "" {
			u.Role = cmd.Role
		}
	default:
		return invalidAction(string(action))
	}
	return nil
}
