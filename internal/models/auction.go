package models

import "time"

// AuctionStatus is persisted as a string.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionClosed    AuctionStatus = "closed"
	AuctionCancelled AuctionStatus = "cancelled"
)

// allowedAuctionTransitions configures the auction status machine.
// closed and cancelled are terminal; both are reached from active and
// exclude each other.
var allowedAuctionTransitions = map[AuctionStatus][]AuctionStatus{
	AuctionScheduled: {AuctionActive, AuctionCancelled},
	AuctionActive:    {AuctionClosed, AuctionCancelled},
	AuctionClosed:    {},
	AuctionCancelled: {},
}

func CanTransitionAuction(from, to AuctionStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedAuctionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Auction struct {
	ID              string        `gorm:"type:uuid;primaryKey" json:"auction_id"`
	CarrierID       string        `gorm:"type:uuid;not null;index" json:"carrier_id"`
	Name            string        `gorm:"type:text;not null" json:"name"`
	StartTime       time.Time     `gorm:"not null" json:"start_time"`
	EndTime         time.Time     `gorm:"not null" json:"end_time"`
	Status          AuctionStatus `gorm:"type:text;not null;default:'scheduled';index" json:"status"`
	GradingGuide    *string       `gorm:"type:text" json:"grading_guide,omitempty"`
	IsVisible       bool          `gorm:"not null;default:false" json:"is_visible"`
	CreatedByUserID *string       `gorm:"type:uuid" json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}

// Open reports whether bids can still be accepted at the given time.
func (a Auction) Open(now time.Time) bool {
	return a.Status == AuctionActive && now.Before(a.EndTime)
}
