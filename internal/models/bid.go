package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus is a derived value recomputed on every read while the
// auction is open. It is persisted onto the row only once, by the close
// sweep, so that new bids never require rewriting earlier rows.
type BidStatus string

const (
	BidActive  BidStatus = "active"
	BidWinning BidStatus = "winning"
	BidOutbid  BidStatus = "outbid"
	BidLost    BidStatus = "lost"
)

// Bid rows are append-only: a client may bid on the same lot more than
// once, each submission is a new immutable record.
type Bid struct {
	ID      string          `gorm:"type:uuid;primaryKey" json:"bid_id"`
	LotID   string          `gorm:"type:uuid;not null;index" json:"lot_id"`
	UserID  string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	BidTime time.Time       `gorm:"not null" json:"bid_time"`
	Status  BidStatus       `gorm:"type:text;not null;default:'active'" json:"status"`
}
