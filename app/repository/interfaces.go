package repository

import (
	"context"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	// Modify loads the user under a row lock, applies fn and saves it in one transaction.
	Modify(id uint, fn func(user *models.User) error) (*models.User, error)
	UpdateLastLogin(id uint, at time.Time) error
	List(filter UserFilter) ([]models.User, int64, error)
	GetStatsByUserID(userID uint) (*UserStats, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ListingRepository defines the interface for listing-related database operations
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	List(filter ListingFilter) ([]models.Listing, int64, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Listing, error)
	// Moderate loads the listing under a row lock, applies fn and saves it in one transaction.
	Moderate(id uint, fn func(listing *models.Listing) error) (*models.Listing, error)
	// Delete removes the listing together with its conversations, messages and transactions.
	Delete(id uint) error
	Count() (int64, error)
	CountByModerationStatus(status string) (int64, error)
	CountByUserID(userID uint) (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ReportRepository defines the interface for technical report database operations
type ReportRepository interface {
	Create(report *models.TechnicalReport) error
	GetByID(id uint) (*models.TechnicalReport, error)
	List(filter ReportFilter) ([]models.TechnicalReport, int64, error)
	GetByUserID(userID uint, offset, limit int) ([]models.TechnicalReport, error)
	Moderate(id uint, fn func(report *models.TechnicalReport) error) (*models.TechnicalReport, error)
	Delete(id uint) error
	Count() (int64, error)
	CountUnvalidated() (int64, error)
	CountByUserID(userID uint) (int64, error)
}

// ConversationRepository defines the interface for buyer/seller conversations
type ConversationRepository interface {
	Create(conversation *models.Conversation) error
	GetByID(id uint) (*models.Conversation, error)
	GetByListingAndBuyer(listingID, buyerID uint) (*models.Conversation, error)
	// MarkReadAndLoad marks every unread message addressed to readerID as read and
	// returns the conversation with its messages oldest first, in one transaction.
	MarkReadAndLoad(id uint, readerID uint) (*models.Conversation, error)
	ListByUserID(userID uint) ([]ConversationSummary, error)
	AddMessage(message *models.Message) error
}

// EvaluationRepository defines the interface for device evaluations
type EvaluationRepository interface {
	Create(evaluation *models.Evaluation) error
	GetByUserID(userID uint, offset, limit int) ([]models.Evaluation, int64, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkAllRead(userID uint) error
}

// QueueRepository reads and prunes the Redis keys of the background job queue.
type QueueRepository interface {
	ListLength(ctx context.Context, key string) (int64, error)
	ScanKeys(ctx context.Context, patterns ...string) ([]string, error)
	DeleteKeys(ctx context.Context, keys []string) (int64, error)
}

// UserStats provides aggregated counts for a single user.
type UserStats struct {
	ListingCount      int64 `json:"listings"`
	ReportCount       int64 `json:"reports"`
	ConversationCount int64 `json:"conversations"`
	TransactionCount  int64 `json:"transactions"`
}

// ConversationSummary is a conversation row with its latest activity and unread count
// for the user the list was requested for.
type ConversationSummary struct {
	Conversation models.Conversation
	LastMessage  *models.Message
	UnreadCount  int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Listing      ListingRepository
	Report       ReportRepository
	Conversation ConversationRepository
	Evaluation   EvaluationRepository
	Notification NotificationRepository
	Queue        QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB, queue QueueRepository) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Listing:      NewListingRepository(db),
		Report:       NewReportRepository(db),
		Conversation: NewConversationRepository(db),
		Evaluation:   NewEvaluationRepository(db),
		Notification: NewNotificationRepository(db),
		Queue:        queue,
	}
}
