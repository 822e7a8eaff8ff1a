package viewmodel

import (
	"testing"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, FormatTimePtr(nil))

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := FormatTimePtr(&ts)
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-04T05:06:07Z", *got)
}

func TestNewPage(t *testing.T) {
	p := NewPage(repository.Pagination{Page: 0, Limit: 500}, 250)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, repository.MaxPageSize, p.Limit)
	assert.Equal(t, int64(250), p.Total)
	assert.Equal(t, 3, p.TotalPages)
}

func TestNewUserFallsBackToGravatar(t *testing.T) {
	u := NewUser(&models.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: models.ROLE_USER})
	assert.Contains(t, u.AvatarURL, "gravatar.com/avatar/")
	assert.Nil(t, u.LastLoginAt)

	u = NewUser(&models.User{ID: 1, Email: "ana@example.com", AvatarURL: "/uploads/avatars/1/a.jpg"})
	assert.Equal(t, "/uploads/avatars/1/a.jpg", u.AvatarURL)
}

func TestNewListingCuratesFields(t *testing.T) {
	reason := "fotos borradas"
	l := NewListing(&models.Listing{
		ID:               3,
		ModerationStatus: models.ModerationRejected,
		Status:           models.ListingStatusInactive,
		RejectionReason:  &reason,
		Device:           models.Device{ID: 2, Brand: "Apple", Model: "iPhone 12"},
		User:             models.User{ID: 9, Name: "Seller", Email: "seller@example.com", Password: "hash"},
	})
	assert.Equal(t, "iPhone 12", l.Device.Model)
	assert.Equal(t, uint(9), l.Owner.ID)
	assert.Equal(t, "fotos borradas", *l.RejectionReason)
	assert.Nil(t, l.ModeratedAt)
}

func TestNewConversationKeepsMessageOrder(t *testing.T) {
	c := NewConversation(&models.Conversation{
		ID: 1,
		Messages: []models.Message{
			{ID: 4, Content: "first"},
			{ID: 7, Content: "second"},
		},
	})
	require.Len(t, c.Messages, 2)
	assert.Equal(t, "first", c.Messages[0].Content)
	assert.Equal(t, "second", c.Messages[1].Content)

	empty := NewConversation(&models.Conversation{ID: 2})
	assert.NotNil(t, empty.Messages)
}

func TestNewConversationSummaries(t *testing.T) {
	rows := NewConversationSummaries([]repository.ConversationSummary{
		{Conversation: models.Conversation{ID: 1}, UnreadCount: 2, LastMessage: &models.Message{ID: 5, Content: "hola"}},
		{Conversation: models.Conversation{ID: 2}},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].UnreadCount)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "hola", rows[0].LastMessage.Content)
	assert.Nil(t, rows[1].LastMessage)
}
