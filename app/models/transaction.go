package models

import "time"

const (
	TransactionPending   = "PENDING"
	TransactionCompleted = "COMPLETED"
	TransactionCancelled = "CANCELLED"
)

type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"index;not null" json:"listing_id"`
	BuyerID   uint      `gorm:"index;not null" json:"buyer_id"`
	SellerID  uint      `gorm:"index;not null" json:"seller_id"`
	Amount    float64   `gorm:"type:decimal(12,2)" json:"amount"`
	Status    string    `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
