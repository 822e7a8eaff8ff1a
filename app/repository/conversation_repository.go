package repository

import (
	"errors"

	"github.com/celumarket/celumarket/app/models"
	"gorm.io/gorm"
)

// conversationRepository implements the ConversationRepository interface
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository instance
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

// GetByID loads the conversation row only, without messages.
func (r *conversationRepository) GetByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.First(&conversation, id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetByListingAndBuyer finds the conversation a buyer opened about a listing.
func (r *conversationRepository) GetByListingAndBuyer(listingID, buyerID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) MarkReadAndLoad(id uint, readerID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", id, readerID, false).
			Update("is_read", true).Error
		if err != nil {
			return err
		}

		return tx.Preload("Listing").Preload("Listing.Device").
			Preload("Buyer").Preload("Seller").
			Preload("Messages", func(db *gorm.DB) *gorm.DB {
				return db.Order("messages.created_at ASC, messages.id ASC")
			}).
			First(&conversation, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListByUserID returns the user's conversations, most recently active first.
func (r *conversationRepository) ListByUserID(userID uint) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	err := r.db.Preload("Listing").Preload("Listing.Device").
		Preload("Buyer").Preload("Seller").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summary := ConversationSummary{Conversation: c}

		var last models.Message
		err := r.db.Where("conversation_id = ?", c.ID).Order("created_at DESC, id DESC").First(&last).Error
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		err = r.db.Model(&models.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", c.ID, userID, false).
			Count(&summary.UnreadCount).Error
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// AddMessage stores a message and bumps the conversation's activity timestamp.
func (r *conversationRepository) AddMessage(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", message.ConversationID).
			Update("updated_at", message.CreatedAt).Error
	})
}
