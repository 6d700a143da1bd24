package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Carrier{},
		&models.Auction{},
		&models.Lot{},
		&models.Bid{},
		&models.Award{},
		&models.Log{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

type loggedEntry struct {
	action  string
	outcome string
	message *string
}

type stubLogWriter struct {
	entries []loggedEntry
}

func (s *stubLogWriter) CreateLog(ctx context.Context, eventID *string, action string, outcome string, message *string) error {
	var copied *string
	if message != nil {
		value := *message
		copied = &value
	}

	s.entries = append(s.entries, loggedEntry{
		action:  action,
		outcome: outcome,
		message: copied,
	})
	return nil
}

func createTestCarrier(t *testing.T, db *gorm.DB, name string) models.Carrier {
	t.Helper()

	carrier := models.Carrier{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&carrier).Error; err != nil {
		t.Fatalf("create carrier: %v", err)
	}
	return carrier
}

func createTestAuction(t *testing.T, db *gorm.DB, carrierID string, status models.AuctionStatus, start time.Time, end time.Time) models.Auction {
	t.Helper()

	now := time.Now().UTC()
	auction := models.Auction{
		ID:        uuid.NewString(),
		CarrierID: carrierID,
		Name:      "Test Auction",
		StartTime: start,
		EndTime:   end,
		Status:    status,
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&auction).Error; err != nil {
		t.Fatalf("create auction: %v", err)
	}
	return auction
}

func createTestLot(t *testing.T, db *gorm.DB, auctionID string, identifier string, minBid decimal.Decimal) models.Lot {
	t.Helper()

	now := time.Now().UTC()
	lot := models.Lot{
		ID:            uuid.NewString(),
		AuctionID:     auctionID,
		LotIdentifier: identifier,
		DeviceName:    "Phone Model X",
		Quantity:      10,
		MinBid:        minBid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&lot).Error; err != nil {
		t.Fatalf("create lot: %v", err)
	}
	return lot
}

func createTestBid(t *testing.T, db *gorm.DB, lotID string, userID string, amount decimal.Decimal, at time.Time) models.Bid {
	t.Helper()

	bid := models.Bid{
		ID:      uuid.NewString(),
		LotID:   lotID,
		UserID:  userID,
		Amount:  amount,
		BidTime: at,
		Status:  models.BidActive,
	}
	if err := db.Create(&bid).Error; err != nil {
		t.Fatalf("create bid: %v", err)
	}
	return bid
}

func clientIdentity(userID string, depositStatus string) Identity {
	return Identity{
		UserID:        userID,
		Email:         "client@example.com",
		Role:          models.RoleClient,
		DepositStatus: depositStatus,
		IsActive:      true,
	}
}

func openAuctionWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.Add(-time.Hour), now.Add(time.Hour)
}
