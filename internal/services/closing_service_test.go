package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

func endedAuctionWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.Add(-2 * time.Hour), now.Add(-time.Minute)
}

func newClosingService(t *testing.T, db *gorm.DB) *ClosingService {
	t.Helper()

	service, err := NewClosingService(db, &stubLogWriter{})
	if err != nil {
		t.Fatalf("NewClosingService: %v", err)
	}
	return service
}

func TestCloseAuctionAwardsHighestAboveFloor(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.NewFromInt(50))

	t0 := start.Add(time.Minute)
	bidA := createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(60), t0)
	bidB := createTestBid(t, db, lot.ID, "bob", decimal.NewFromInt(80), t0.Add(time.Minute))

	service := newClosingService(t, db)
	report, err := service.CloseAuction(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("CloseAuction: %v", err)
	}
	if report.LotsProcessed != 1 || report.AwardsCreated != 1 {
		t.Fatalf("report = %+v, want 1 lot and 1 award", report)
	}

	var closed models.Auction
	if err := db.Where("id = ?", auction.ID).First(&closed).Error; err != nil {
		t.Fatalf("reload auction: %v", err)
	}
	if closed.Status != models.AuctionClosed {
		t.Fatalf("auction status = %q, want closed", closed.Status)
	}

	var award models.Award
	if err := db.Where("lot_id = ?", lot.ID).First(&award).Error; err != nil {
		t.Fatalf("load award: %v", err)
	}
	if award.UserID != "bob" || award.WinningBidID != bidB.ID {
		t.Fatalf("award = %+v, want bob's bid %s", award, bidB.ID)
	}
	if !award.WinningAmount.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("winning amount = %s, want 80", award.WinningAmount)
	}

	var winner, loser models.Bid
	if err := db.Where("id = ?", bidB.ID).First(&winner).Error; err != nil {
		t.Fatalf("reload winner: %v", err)
	}
	if err := db.Where("id = ?", bidA.ID).First(&loser).Error; err != nil {
		t.Fatalf("reload loser: %v", err)
	}
	if winner.Status != models.BidWinning {
		t.Fatalf("winner status = %q, want winning", winner.Status)
	}
	if loser.Status != models.BidLost {
		t.Fatalf("loser status = %q, want lost", loser.Status)
	}
}

func TestCloseAuctionBelowFloorNoAward(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.NewFromInt(100))
	bid := createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(90), start.Add(time.Minute))

	service := newClosingService(t, db)
	report, err := service.CloseAuction(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("CloseAuction: %v", err)
	}
	if report.AwardsCreated != 0 {
		t.Fatalf("awards created = %d, want 0", report.AwardsCreated)
	}

	var awards int64
	if err := db.Model(&models.Award{}).Count(&awards).Error; err != nil {
		t.Fatalf("count awards: %v", err)
	}
	if awards != 0 {
		t.Fatalf("expected no awards, got %d", awards)
	}

	var stored models.Bid
	if err := db.Where("id = ?", bid.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload bid: %v", err)
	}
	if stored.Status != models.BidLost {
		t.Fatalf("bid status = %q, want lost", stored.Status)
	}
}

func TestCloseAuctionEqualAmountsEarliestWins(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)

	t0 := start.Add(time.Minute)
	early := createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(75), t0)
	createTestBid(t, db, lot.ID, "bob", decimal.NewFromInt(75), t0.Add(time.Minute))

	service := newClosingService(t, db)
	if _, err := service.CloseAuction(context.Background(), auction.ID); err != nil {
		t.Fatalf("CloseAuction: %v", err)
	}

	var award models.Award
	if err := db.Where("lot_id = ?", lot.ID).First(&award).Error; err != nil {
		t.Fatalf("load award: %v", err)
	}
	if award.WinningBidID != early.ID {
		t.Fatalf("awarded bid = %s, want earliest equal bid %s", award.WinningBidID, early.ID)
	}
}

func TestCloseAuctionIdempotent(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(60), start.Add(time.Minute))

	service := newClosingService(t, db)
	if _, err := service.CloseAuction(context.Background(), auction.ID); err != nil {
		t.Fatalf("first CloseAuction: %v", err)
	}

	// Closed status takes the settlement retry path; already-settled
	// lots must stay untouched.
	report, err := service.CloseAuction(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("second CloseAuction: %v", err)
	}
	if report.AwardsCreated != 0 {
		t.Fatalf("second run created %d awards, want 0", report.AwardsCreated)
	}

	var awards int64
	if err := db.Model(&models.Award{}).Count(&awards).Error; err != nil {
		t.Fatalf("count awards: %v", err)
	}
	if awards != 1 {
		t.Fatalf("awards = %d, want exactly 1 after re-run", awards)
	}
}

func TestCloseAuctionRetrySettlesMissedLots(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionClosed, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(60), start.Add(time.Minute))

	service := newClosingService(t, db)
	report, err := service.CloseAuction(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("CloseAuction on closed auction: %v", err)
	}
	if report.AwardsCreated != 1 {
		t.Fatalf("awards created = %d, want 1 for unsettled lot", report.AwardsCreated)
	}
}

func TestCloseAuctionNotEnded(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := openAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)

	service := newClosingService(t, db)
	if _, err := service.CloseAuction(context.Background(), auction.ID); !errors.Is(err, ErrAuctionNotEnded) {
		t.Fatalf("err = %v, want ErrAuctionNotEnded", err)
	}
}

func TestCloseAuctionCancelledIsFinal(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := endedAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionCancelled, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(60), start.Add(time.Minute))

	service := newClosingService(t, db)
	if _, err := service.CloseAuction(context.Background(), auction.ID); !errors.Is(err, ErrAuctionFinal) {
		t.Fatalf("err = %v, want ErrAuctionFinal", err)
	}

	var awards int64
	if err := db.Model(&models.Award{}).Count(&awards).Error; err != nil {
		t.Fatalf("count awards: %v", err)
	}
	if awards != 0 {
		t.Fatalf("cancelled auction must not award, got %d awards", awards)
	}
}

func TestCloseAuctionUnknown(t *testing.T) {
	db := openTestDB(t)

	service := newClosingService(t, db)
	if _, err := service.CloseAuction(context.Background(), "missing"); !errors.Is(err, ErrAuctionNotFound) {
		t.Fatalf("err = %v, want ErrAuctionNotFound", err)
	}
}

func TestProcessStatusesActivatesAndCloses(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	now := time.Now().UTC()

	dueToStart := createTestAuction(t, db, carrier.ID, models.AuctionScheduled, now.Add(-time.Minute), now.Add(time.Hour))
	notYetDue := createTestAuction(t, db, carrier.ID, models.AuctionScheduled, now.Add(time.Hour), now.Add(2*time.Hour))
	dueToClose := createTestAuction(t, db, carrier.ID, models.AuctionActive, now.Add(-2*time.Hour), now.Add(-time.Minute))
	lot := createTestLot(t, db, dueToClose.ID, "L-001", decimal.Zero)
	createTestBid(t, db, lot.ID, "alice", decimal.NewFromInt(60), now.Add(-time.Hour))

	service := newClosingService(t, db)
	report, err := service.ProcessStatuses(context.Background())
	if err != nil {
		t.Fatalf("ProcessStatuses: %v", err)
	}
	if report.Activated != 1 {
		t.Fatalf("activated = %d, want 1", report.Activated)
	}
	if report.Closed != 1 {
		t.Fatalf("closed = %d, want 1", report.Closed)
	}

	assertAuctionStatus(t, db, dueToStart.ID, models.AuctionActive)
	assertAuctionStatus(t, db, notYetDue.ID, models.AuctionScheduled)
	assertAuctionStatus(t, db, dueToClose.ID, models.AuctionClosed)

	var awards int64
	if err := db.Model(&models.Award{}).Count(&awards).Error; err != nil {
		t.Fatalf("count awards: %v", err)
	}
	if awards != 1 {
		t.Fatalf("awards = %d, want 1", awards)
	}
}

func TestProcessStatusesNoExpiredActivation(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	now := time.Now().UTC()

	// Scheduled but already past its end; must not flip to active.
	stale := createTestAuction(t, db, carrier.ID, models.AuctionScheduled, now.Add(-2*time.Hour), now.Add(-time.Hour))

	service := newClosingService(t, db)
	report, err := service.ProcessStatuses(context.Background())
	if err != nil {
		t.Fatalf("ProcessStatuses: %v", err)
	}
	if report.Activated != 0 {
		t.Fatalf("activated = %d, want 0", report.Activated)
	}

	assertAuctionStatus(t, db, stale.ID, models.AuctionScheduled)
}

func assertAuctionStatus(t *testing.T, db *gorm.DB, auctionID string, want models.AuctionStatus) {
	t.Helper()

	var auction models.Auction
	if err := db.Where("id = ?", auctionID).First(&auction).Error; err != nil {
		t.Fatalf("reload auction %s: %v", auctionID, err)
	}
	if auction.Status != want {
		t.Fatalf("auction %s status = %q, want %q", auctionID, auction.Status, want)
	}
}
