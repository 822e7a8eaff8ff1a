package repository

import (
	"time"

	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const listingOrder = "CASE WHEN listings.moderation_status = 'PENDING' THEN 0 ELSE 1 END, listings.created_at DESC"

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing with its device and owner
func (r *listingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Preload("Device").Preload("User").First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// List returns listings matching filter, pending ones first, newest first within a group.
// Search matches device model, owner name and location case-insensitively.
func (r *listingRepository) List(filter ListingFilter) ([]models.Listing, int64, error) {
	var total int64
	if err := r.db.Model(&models.Listing{}).Scopes(listingFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := listingPageQuery(r.db, filter).Preload("Device").Preload("User").Find(&listings).Error
	return listings, total, err
}

// listingPageQuery selects one page of filtered listings in moderation order.
func listingPageQuery(db *gorm.DB, filter ListingFilter) *gorm.DB {
	page := filter.Pagination.Normalize()
	return db.Scopes(listingFilterScope(filter)).
		Select("listings.*").
		Order(listingOrder).
		Offset(page.Offset()).Limit(page.Limit)
}

func listingFilterScope(filter ListingFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("LEFT JOIN devices ON devices.id = listings.device_id").
			Joins("LEFT JOIN users ON users.id = listings.user_id")
		if filter.ModerationStatus != "" {
			db = db.Where("listings.moderation_status = ?", filter.ModerationStatus)
		}
		if filter.Status != "" {
			db = db.Where("listings.status = ?", filter.Status)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where(
				"LOWER(devices.model) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(listings.location) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

// GetByUserID returns the newest listings of a user
func (r *listingRepository) GetByUserID(userID uint, offset, limit int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Preload("Device").Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	return listings, err
}

func (r *listingRepository) Moderate(id uint, fn func(listing *models.Listing) error) (*models.Listing, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, id).Error; err != nil {
			return err
		}
		if err := fn(&listing); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *listingRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Select("id").First(&listing, id).Error; err != nil {
			return err
		}

		conversationIDs := tx.Model(&models.Conversation{}).Select("id").Where("listing_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", conversationIDs).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, id).Error
	})
}

func (r *listingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}

func (r *listingRepository) CountByModerationStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Where("moderation_status = ?", status).Count(&count).Error
	return count, err
}

func (r *listingRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetDailyStats returns how many listings were created per day
func (r *listingRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyStats(r.db, &models.Listing{}, startDate, endDate)
}
