package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Award records the close-time outcome for a lot. The unique indexes on
// lot and winning bid enforce at most one award per lot.
type Award struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"award_id"`
	LotID         string          `gorm:"type:uuid;not null;uniqueIndex" json:"lot_id"`
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	WinningBidID  string          `gorm:"type:uuid;not null;uniqueIndex" json:"winning_bid_id"`
	WinningAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"winning_amount"`
	AwardedAt     time.Time       `gorm:"not null" json:"awarded_at"`
}
