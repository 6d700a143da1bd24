package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Lot struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"lot_id"`
	AuctionID     string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_auction_lot_identifier" json:"auction_id"`
	LotIdentifier string          `gorm:"type:text;not null;uniqueIndex:idx_auction_lot_identifier" json:"lot_identifier"`
	DeviceName    string          `gorm:"type:text;not null" json:"device_name"`
	DeviceDetails *string         `gorm:"type:text" json:"device_details,omitempty"`
	ImageURL      *string         `gorm:"type:text" json:"image_url,omitempty"`
	Condition     *string         `gorm:"type:text" json:"condition,omitempty"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	MinBid        decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"min_bid"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// HasFloor reports whether the lot defines a minimum bid.
func (l Lot) HasFloor() bool {
	return l.MinBid.IsPositive()
}
