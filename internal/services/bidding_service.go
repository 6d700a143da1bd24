package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrLotNotFound = errors.New("lot not found")
var ErrAuctionNotOpen = errors.New("auction is not open for bidding")
var ErrBiddingNotAuthorized = errors.New("bidding requires a deposit on file")
var ErrInvalidBidAmount = errors.New("invalid bid amount")

type BiddingService struct {
	db         *gorm.DB
	logService LogWriter
}

func NewBiddingService(db *gorm.DB, logService LogWriter) (*BiddingService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &BiddingService{db: db, logService: logService}, nil
}

// SubmitBid appends one immutable bid row. Prior bids from the same
// client are never modified or withdrawn; a bid below another client's
// standing bid is accepted and simply will not rank as winning.
// Precondition order: auction open, deposit standing, amount.
func (s *BiddingService) SubmitBid(ctx context.Context, identity Identity, auctionID string, lotID string, amount decimal.Decimal) (*models.Bid, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("bidding service is nil")
	}
	if identity.UserID == "" {
		return nil, ErrBiddingNotAuthorized
	}

	var auction models.Auction
	if err := s.db.WithContext(ctx).Where("id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("load auction: %w", err)
	}

	var lot models.Lot
	if err := s.db.WithContext(ctx).Where("id = ?", lotID).First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("load lot: %w", err)
	}
	if lot.AuctionID != auction.ID {
		return nil, ErrLotNotFound
	}

	now := time.Now().UTC()
	if !auction.Open(now) || !auction.IsVisible {
		return nil, ErrAuctionNotOpen
	}

	if !identity.IsActive || !identity.CanBid() {
		return nil, ErrBiddingNotAuthorized
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidBidAmount
	}
	if lot.HasFloor() && amount.LessThan(lot.MinBid) {
		return nil, ErrInvalidBidAmount
	}

	bid := models.Bid{
		ID:      uuid.NewString(),
		LotID:   lot.ID,
		UserID:  identity.UserID,
		Amount:  amount,
		BidTime: now,
		Status:  models.BidActive,
	}
	if err := s.db.WithContext(ctx).Create(&bid).Error; err != nil {
		failMsg := fmt.Sprintf("bid lot=%s user=%s amount=%s: %v", lot.ID, identity.UserID, amount.String(), err)
		_ = s.logService.CreateLog(ctx, nil, LogActionBidSubmit, LogOutcomeFail, &failMsg)
		return nil, fmt.Errorf("store bid: %w", err)
	}

	msg := fmt.Sprintf("bid %s lot=%s user=%s amount=%s", bid.ID, lot.ID, identity.UserID, amount.String())
	_ = s.logService.CreateLog(ctx, nil, LogActionBidSubmit, LogOutcomeSuccess, &msg)

	return &bid, nil
}
