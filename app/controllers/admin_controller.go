package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/moderation"
	"github.com/celumarket/celumarket/internal/pkg/statistics"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
	"github.com/celumarket/celumarket/internal/pkg/viewmodel"
)

// AdminController serves the moderation endpoints. Every handler passes the
// caller's identity to the moderation service, which runs the admin guard first.
type AdminController struct {
	moderation *moderation.Service
	statistics *statistics.Service
}

// NewAdminController creates a new admin controller with its services
func NewAdminController(mod *moderation.Service, stats *statistics.Service) *AdminController {
	return &AdminController{
		moderation: mod,
		statistics: stats,
	}
}

// parseCommand decodes the PATCH body. A malformed body is only reported
// after the guard ran so that non-admins always see 403.
func (ac *AdminController) parseCommand(c *fiber.Ctx) (moderation.Command, error) {
	var cmd moderation.Command
	if err := c.BodyParser(&cmd); err != nil {
		if _, guardErr := ac.moderation.Guard().RequireAdmin(usercontext.GetEmail(c)); guardErr != nil {
			return cmd, guardErr
		}
		return cmd, apperror.NewValidation("invalid request body")
	}
	return cmd, nil
}

// HandleListings lists listings for review.
func (ac *AdminController) HandleListings(c *fiber.Ctx) error {
	filter := repository.ListingFilter{
		Pagination:       parsePagination(c),
		ModerationStatus: c.Query("moderation_status"),
		Status:           c.Query("status"),
		Search:           c.Query("search"),
	}

	listings, total, err := ac.moderation.ListListings(usercontext.GetEmail(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings":   viewmodel.NewListings(listings),
		"pagination": viewmodel.NewPage(filter.Pagination, total),
	})
}

func (ac *AdminController) HandleListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}

	listing, err := ac.moderation.GetListing(usercontext.GetEmail(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"listing": viewmodel.NewListing(listing)})
}

// HandleListingModerate applies one moderation action to a listing.
func (ac *AdminController) HandleListingModerate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}
	cmd, err := ac.parseCommand(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := ac.moderation.ModerateListing(c.UserContext(), usercontext.GetEmail(c), id, cmd)
	if err != nil {
		return respondError(c, err)
	}
	ac.statistics.Invalidate(c.UserContext())

	if result.Deleted {
		return c.JSON(fiber.Map{"success": true, "message": result.Message})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": result.Message,
		"listing": viewmodel.NewListing(result.Listing),
	})
}

// HandleReports lists technical reports for review.
func (ac *AdminController) HandleReports(c *fiber.Ctx) error {
	isValidated, err := parseOptionalBool(c, "is_validated")
	if err != nil {
		return ac.guardThen(c, err)
	}
	filter := repository.ReportFilter{
		Pagination:  parsePagination(c),
		ReportType:  c.Query("report_type"),
		IsValidated: isValidated,
		Status:      c.Query("status"),
		Search:      c.Query("search"),
	}

	reports, total, err := ac.moderation.ListReports(usercontext.GetEmail(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports":    viewmodel.NewReports(reports),
		"pagination": viewmodel.NewPage(filter.Pagination, total),
	})
}

func (ac *AdminController) HandleReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}

	report, err := ac.moderation.GetReport(usercontext.GetEmail(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"report": viewmodel.NewReport(report)})
}

func (ac *AdminController) HandleReportModerate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}
	cmd, err := ac.parseCommand(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := ac.moderation.ModerateReport(c.UserContext(), usercontext.GetEmail(c), id, cmd)
	if err != nil {
		return respondError(c, err)
	}
	ac.statistics.Invalidate(c.UserContext())

	if result.Deleted {
		return c.JSON(fiber.Map{"success": true, "message": result.Message})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": result.Message,
		"report":  viewmodel.NewReport(result.Report),
	})
}

// HandleUsers lists user accounts.
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Pagination: parsePagination(c),
		Role:       c.Query("role"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
	}

	users, total, err := ac.moderation.ListUsers(usercontext.GetEmail(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":      viewmodel.NewUsers(users),
		"pagination": viewmodel.NewPage(filter.Pagination, total),
	})
}

// HandleUser returns a profile with recent activity and counts.
func (ac *AdminController) HandleUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}

	profile, err := ac.moderation.GetUserProfile(usercontext.GetEmail(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(viewmodel.UserProfile{
		User:           viewmodel.NewUser(profile.User),
		RecentListings: viewmodel.NewListings(profile.RecentListings),
		RecentReports:  viewmodel.NewReports(profile.RecentReports),
		Counts:         profile.Stats,
	})
}

func (ac *AdminController) HandleUserModerate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return ac.guardThen(c, err)
	}
	cmd, err := ac.parseCommand(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := ac.moderation.ModerateUser(c.UserContext(), usercontext.GetEmail(c), id, cmd)
	if err != nil {
		return respondError(c, err)
	}
	ac.statistics.Invalidate(c.UserContext())

	return c.JSON(fiber.Map{
		"success": true,
		"user":    viewmodel.NewUser(user),
	})
}

// HandleDashboard returns the cached admin overview.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := ac.statistics.Dashboard(c.UserContext(), usercontext.GetEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dashboard)
}

// guardThen reports a request parsing error, unless the caller is not an
// admin in which case the guard's error wins.
func (ac *AdminController) guardThen(c *fiber.Ctx, parseErr error) error {
	if _, err := ac.moderation.Guard().RequireAdmin(usercontext.GetEmail(c)); err != nil {
		return respondError(c, err)
	}
	return respondError(c, parseErr)
}
