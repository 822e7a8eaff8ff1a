// Package messaging implements buyer/seller conversations around a listing.
package messaging

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const MaxMessageLength = 2000

// MessageNotifier is told about new messages so the receiver can be alerted.
type MessageNotifier interface {
	MessageSent(ctx context.Context, conversation *models.Conversation, message *models.Message)
}

type Service struct {
	conversations repository.ConversationRepository
	listings      repository.ListingRepository
	notifier      MessageNotifier
	policy        *bluemonday.Policy
}

func NewService(repos *repository.Repositories, notifier MessageNotifier) *Service {
	return &Service{
		conversations: repos.Conversation,
		listings:      repos.Listing,
		notifier:      notifier,
		policy:        bluemonday.StrictPolicy(),
	}
}

// loadForParty returns the conversation when requesterID is one of its parties.
func (s *Service) loadForParty(requesterID, conversationID uint) (*models.Conversation, error) {
	if requesterID == 0 {
		return nil, apperror.NewUnauthenticated("login required")
	}
	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, apperror.FromStore(err, "Conversation not found")
	}
	if !conversation.HasParty(requesterID) {
		return nil, apperror.NewAccessDenied("You are not a participant of this conversation")
	}
	return conversation, nil
}

// Open returns the conversation with its messages oldest first. As a side effect
// every unread message addressed to the requester is marked read.
func (s *Service) Open(requesterID, conversationID uint) (*models.Conversation, error) {
	if _, err := s.loadForParty(requesterID, conversationID); err != nil {
		return nil, err
	}

	conversation, err := s.conversations.MarkReadAndLoad(conversationID, requesterID)
	if err != nil {
		return nil, apperror.FromStore(err, "Conversation not found")
	}
	return conversation, nil
}

// List returns the requester's conversations with unread counts.
func (s *Service) List(requesterID uint) ([]repository.ConversationSummary, error) {
	if requesterID == 0 {
		return nil, apperror.NewUnauthenticated("login required")
	}
	summaries, err := s.conversations.ListByUserID(requesterID)
	if err != nil {
		return nil, apperror.NewUnexpected("failed to list conversations", err)
	}
	return summaries, nil
}

// Send appends a message from the requester to the other party.
func (s *Service) Send(ctx context.Context, requesterID, conversationID uint, content string) (*models.Message, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(content)))
	if cleaned == "" {
		return nil, apperror.NewValidation("content is required")
	}
	if len([]rune(cleaned)) > MaxMessageLength {
		return nil, apperror.Newf(apperror.Validation, "content must be at most %d characters", MaxMessageLength)
	}

	conversation, err := s.loadForParty(requesterID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       requesterID,
		ReceiverID:     conversation.Counterpart(requesterID),
		Content:        cleaned,
	}
	if err := s.conversations.AddMessage(message); err != nil {
		return nil, apperror.NewUnexpected("failed to send message", err)
	}

	if s.notifier != nil {
		s.notifier.MessageSent(ctx, conversation, message)
	}
	return message, nil
}

// Start opens (or reuses) the conversation between a buyer and the seller of listingID.
func (s *Service) Start(requesterID, listingID uint) (*models.Conversation, error) {
	if requesterID == 0 {
		return nil, apperror.NewUnauthenticated("login required")
	}
	listing, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, apperror.FromStore(err, "Listing not found")
	}
	if !listing.IsPubliclyVisible() {
		return nil, apperror.NewNotFound("Listing not found")
	}
	if listing.UserID == requesterID {
		return nil, apperror.NewValidation("you cannot message your own listing")
	}

	existing, err := s.conversations.GetByListingAndBuyer(listingID, requesterID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewUnexpected("failed to look up conversation", err)
	}

	conversation := &models.Conversation{
		ListingID: listingID,
		BuyerID:   requesterID,
		SellerID:  listing.UserID,
	}
	if err := s.conversations.Create(conversation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.NewValidation("conversation already exists")
		}
		return nil, apperror.NewUnexpected("failed to start conversation", err)
	}
	return conversation, nil
}
