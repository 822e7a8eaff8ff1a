package repository

import (
	"fmt"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) Modify(id uint, fn func(user *models.User) error) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return err
		}
		if err := fn(&user); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// List retrieves a filtered, paginated list of users together with the total match count
func (r *userRepository) List(filter UserFilter) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Scopes(userFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Pagination.Normalize()
	var users []models.User
	err := r.db.Scopes(userFilterScope(filter)).
		Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	return users, total, err
}

func userFilterScope(filter UserFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Role != "" {
			db = db.Where("role = ?", filter.Role)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}
		return db
	}
}

// GetStatsByUserID returns aggregate statistics for the given user.
func (r *userRepository) GetStatsByUserID(userID uint) (*UserStats, error) {
	var stats UserStats

	err := r.db.Model(&models.Listing{}).Where("user_id = ?", userID).Count(&stats.ListingCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	err = r.db.Model(&models.TechnicalReport{}).Where("user_id = ?", userID).Count(&stats.ReportCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	err = r.db.Model(&models.Conversation{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).Count(&stats.ConversationCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	err = r.db.Model(&models.Transaction{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).Count(&stats.TransactionCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return &stats, nil
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyStats(r.db, &models.User{}, startDate, endDate)
}

func dailyStats(db *gorm.DB, model any, startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string
		Count int64
	}

	expr := dateExpr(db, "created_at")
	err := db.Model(model).
		Select(expr+" as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group(expr).
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	stats := make([]models.DailyStats, len(results))
	for i, result := range results {
		stats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return stats, nil
}
