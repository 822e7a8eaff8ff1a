package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/metrics/counter"
	"github.com/celumarket/celumarket/internal/pkg/viewmodel"
)

// ListingController serves approved listings to everyone.
type ListingController struct {
	listings repository.ListingRepository
	views    *counter.ViewCounter
}

// NewListingController wires the public listing endpoint. views may be nil.
func NewListingController(listings repository.ListingRepository, views *counter.ViewCounter) *ListingController {
	return &ListingController{listings: listings, views: views}
}

// HandleListing returns a publicly visible listing and counts the view.
func (lc *ListingController) HandleListing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	listing, err := lc.listings.GetByID(id)
	if err != nil {
		return respondError(c, apperror.FromStore(err, "Listing not found"))
	}
	if !listing.IsPubliclyVisible() {
		return respondError(c, apperror.NewNotFound("Listing not found"))
	}

	view := viewmodel.NewListing(listing)
	if lc.views != nil {
		if err := lc.views.AddListingView(c.UserContext(), listing.ID); err != nil {
			log.Warnf("[Listing] failed to count view for listing %d: %v", listing.ID, err)
		}
		view.Views += lc.views.Pending(c.UserContext(), listing.ID)
	}
	// moderation details stay internal
	view.ModeratedByID = nil
	view.RejectionReason = nil

	return c.JSON(fiber.Map{"listing": view})
}
