// Package moderation implements the admin workflows over listings, technical
// reports and user accounts.
package moderation

import (
	"context"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/metrics"
	"github.com/gofiber/fiber/v2/log"
)

// Notifier tells owners about moderation outcomes. Failures are the notifier's
// concern and never undo a moderation action.
type Notifier interface {
	ListingModerated(ctx context.Context, listing *models.Listing, action ListingAction)
	ReportModerated(ctx context.Context, report *models.TechnicalReport, action ReportAction)
	AccountChanged(ctx context.Context, user *models.User, action UserAction)
}

type noopNotifier struct{}

func (noopNotifier) ListingModerated(context.Context, *models.Listing, ListingAction)       {}
func (noopNotifier) ReportModerated(context.Context, *models.TechnicalReport, ReportAction) {}
func (noopNotifier) AccountChanged(context.Context, *models.User, UserAction)               {}

type Service struct {
	guard    *access.Guard
	listings repository.ListingRepository
	reports  repository.ReportRepository
	users    repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

// NewService wires the moderation workflows. A nil notifier disables notifications.
func NewService(repos *repository.Repositories, guard *access.Guard, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		guard:    guard,
		listings: repos.Listing,
		reports:  repos.Report,
		users:    repos.User,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Guard exposes the admin guard for read-only admin endpoints.
func (s *Service) Guard() *access.Guard {
	return s.guard
}

// ListingResult is the outcome of a listing action. Listing is nil when Deleted.
type ListingResult struct {
	Listing *models.Listing
	Deleted bool
	Message string
}

// ReportResult is the outcome of a report action. Report is nil when Deleted.
type ReportResult struct {
	Report  *models.TechnicalReport
	Deleted bool
	Message string
}

func (s *Service) ListListings(identity string, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, 0, err
	}
	if filter.ModerationStatus != "" && !models.IsValidModerationStatus(filter.ModerationStatus) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid moderation_status %q", filter.ModerationStatus)
	}
	if filter.Status != "" && !models.IsValidListingStatus(filter.Status) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid status %q", filter.Status)
	}

	listings, total, err := s.listings.List(filter)
	if err != nil {
		return nil, 0, apperror.NewUnexpected("failed to list listings", err)
	}
	return listings, total, nil
}

func (s *Service) GetListing(identity string, id uint) (*models.Listing, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, err
	}
	listing, err := s.listings.GetByID(id)
	if err != nil {
		return nil, apperror.FromStore(err, "Listing not found")
	}
	return listing, nil
}

// ModerateListing applies cmd to the listing with id on behalf of the admin behind identity.
func (s *Service) ModerateListing(ctx context.Context, identity string, id uint, cmd Command) (*ListingResult, error) {
	admin, err := s.guard.RequireAdmin(identity)
	if err != nil {
		return nil, err
	}

	action, err := ParseListingAction(cmd.Action)
	if err != nil {
		return nil, err
	}
	if action == ListingReject {
		if _, err := requireReason(cmd.Reason, "reason"); err != nil {
			return nil, err
		}
	}

	if action == ListingDelete {
		listing, err := s.listings.GetByID(id)
		if err != nil {
			return nil, apperror.FromStore(err, "Listing not found")
		}
		if err := s.listings.Delete(id); err != nil {
			return nil, apperror.FromStore(err, "Listing not found")
		}
		s.record("listing", string(action), admin, id)
		s.notifier.ListingModerated(ctx, listing, action)
		return &ListingResult{Deleted: true, Message: "Listing deleted successfully"}, nil
	}

	now := s.now()
	listing, err := s.listings.Moderate(id, func(l *models.Listing) error {
		return ApplyListingAction(l, action, cmd.Reason, admin.ID, now)
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Listing not found")
	}

	s.record("listing", string(action), admin, id)
	s.notifier.ListingModerated(ctx, listing, action)
	return &ListingResult{Listing: listing, Message: listingMessage(action)}, nil
}

func (s *Service) ListReports(identity string, filter repository.ReportFilter) ([]models.TechnicalReport, int64, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, 0, err
	}
	if filter.ReportType != "" && !models.IsValidReportType(filter.ReportType) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid report_type %q", filter.ReportType)
	}
	if filter.Status != "" && !models.IsValidReportStatus(filter.Status) {
		return nil, 0, apperror.Newf(apperror.Validation, "invalid status %q", filter.Status)
	}

	reports, total, err := s.reports.List(filter)
	if err != nil {
		return nil, 0, apperror.NewUnexpected("failed to list reports", err)
	}
	return reports, total, nil
}

func (s *Service) GetReport(identity string, id uint) (*models.TechnicalReport, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, apperror.FromStore(err, "Report not found")
	}
	return report, nil
}

func (s *Service) ModerateReport(ctx context.Context, identity string, id uint, cmd Command) (*ReportResult, error) {
	admin, err := s.guard.RequireAdmin(identity)
	if err != nil {
		return nil, err
	}

	action, err := ParseReportAction(cmd.Action)
	if err != nil {
		return nil, err
	}
	if action == ReportInvalidate {
		if _, err := requireReason(cmd.Reason, "reason"); err != nil {
			return nil, err
		}
	}

	if action == ReportDelete {
		report, err := s.reports.GetByID(id)
		if err != nil {
			return nil, apperror.FromStore(err, "Report not found")
		}
		if err := s.reports.Delete(id); err != nil {
			return nil, apperror.FromStore(err, "Report not found")
		}
		s.record("report", string(action), admin, id)
		s.notifier.ReportModerated(ctx, report, action)
		return &ReportResult{Deleted: true, Message: "Report deleted successfully"}, nil
	}

	now := s.now()
	report, err := s.reports.Moderate(id, func(r *models.TechnicalReport) error {
		return ApplyReportAction(r, action, cmd.Reason, admin.ID, now)
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Report not found")
	}

	s.record("report", string(action), admin, id)
	s.notifier.ReportModerated(ctx, report, action)
	return &ReportResult{Report: report, Message: reportMessage(action)}, nil
}

func (s *Service) record(entity, action string, admin *models.User, id uint) {
	metrics.ModerationActions.WithLabelValues(entity, action).Inc()
	log.Infof("[Moderation] admin %d applied %s to %s %d", admin.ID, action, entity, id)
}

func listingMessage(action ListingAction) string {
	switch action {
	case ListingApprove:
		return "Listing approved"
	case ListingReject:
		return "Listing rejected"
	case ListingFeature:
		return "Listing featured"
	case ListingUnfeature:
		return "Listing unfeatured"
	}
	return "Listing updated"
}

func reportMessage(action ReportAction) string {
	switch action {
	case ReportValidate:
		return "Report validated"
	case ReportInvalidate:
		return "Report invalidated"
	}
	return "Report updated"
}
