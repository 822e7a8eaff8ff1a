package models

import "time"

type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"index;not null" json:"listing_id"`
	Listing   *Listing  `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	BuyerID   uint      `gorm:"index;not null" json:"buyer_id"`
	Buyer     *User     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	SellerID  uint      `gorm:"index;not null" json:"seller_id"`
	Seller    *User     `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Messages  []Message `gorm:"foreignKey:ConversationID" json:"messages"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasParty reports whether userID is the buyer or the seller.
func (c *Conversation) HasParty(userID uint) bool {
	return userID != 0 && (c.BuyerID == userID || c.SellerID == userID)
}

// Counterpart returns the other party of the conversation.
func (c *Conversation) Counterpart(userID uint) uint {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	ReceiverID     uint      `gorm:"index;not null" json:"receiver_id"`
	Content        string    `gorm:"type:text" json:"content" validate:"required,max=2000"`
	IsRead         bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
