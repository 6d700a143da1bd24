package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrConcurrentClose = errors.New("auction close already in progress")
var ErrAuctionNotEnded = errors.New("auction has not ended yet")

type ClosingService struct {
	db         *gorm.DB
	logService LogWriter
}

// CloseReport summarizes one settlement run.
type CloseReport struct {
	AuctionID     string `json:"auction_id"`
	LotsProcessed int    `json:"lots_processed"`
	AwardsCreated int    `json:"awards_created"`
}

// SweepReport summarizes one status sweep.
type SweepReport struct {
	Activated int `json:"activated"`
	Closed    int `json:"closed"`
}

func NewClosingService(db *gorm.DB, logService LogWriter) (*ClosingService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &ClosingService{db: db, logService: logService}, nil
}

// ProcessStatuses advances scheduled auctions to active once their
// start time passes and closes active auctions past their end time.
// Safe to run from the cron scheduler and the admin endpoint at the
// same time; every transition is conditional.
func (s *ClosingService) ProcessStatuses(ctx context.Context) (SweepReport, error) {
	if s == nil || s.db == nil {
		return SweepReport{}, errors.New("closing service is nil")
	}

	now := time.Now().UTC()
	report := SweepReport{}

	result := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("status = ? AND start_time <= ? AND end_time > ?", models.AuctionScheduled, now, now).
		Updates(map[string]interface{}{"status": models.AuctionActive, "updated_at": now})
	if result.Error != nil {
		return report, fmt.Errorf("activate auctions: %w", result.Error)
	}
	report.Activated = int(result.RowsAffected)

	var due []models.Auction
	if err := s.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", models.AuctionActive, now).
		Find(&due).Error; err != nil {
		return report, fmt.Errorf("find due auctions: %w", err)
	}

	for _, auction := range due {
		if _, err := s.CloseAuction(ctx, auction.ID); err != nil {
			if errors.Is(err, ErrConcurrentClose) {
				continue
			}
			failMsg := fmt.Sprintf("close auction %s: %v", auction.ID, err)
			_ = s.logService.CreateLog(ctx, nil, LogActionAuctionSweep, LogOutcomeFail, &failMsg)
			return report, err
		}
		report.Closed++
	}

	if report.Activated > 0 || report.Closed > 0 {
		msg := fmt.Sprintf("activated=%d closed=%d", report.Activated, report.Closed)
		_ = s.logService.CreateLog(ctx, nil, LogActionAuctionSweep, LogOutcomeSuccess, &msg)
	}

	return report, nil
}

// CloseAuction closes one auction and settles its lots. Exclusivity is
// the conditional active->closed update: of two concurrent attempts
// exactly one flips the row, the other gets ErrConcurrentClose and
// must treat it as a no-op. Settlement itself is idempotent per lot,
// so re-running on an already-closed auction (the retry path after a
// mid-sweep failure) changes nothing that is already settled.
func (s *ClosingService) CloseAuction(ctx context.Context, auctionID string) (*CloseReport, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("closing service is nil")
	}

	var auction models.Auction
	if err := s.db.WithContext(ctx).Where("id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("load auction: %w", err)
	}

	now := time.Now().UTC()
	switch auction.Status {
	case models.AuctionActive:
		if auction.EndTime.After(now) {
			return nil, ErrAuctionNotEnded
		}
		result := s.db.WithContext(ctx).Model(&models.Auction{}).
			Where("id = ? AND status = ?", auction.ID, models.AuctionActive).
			Updates(map[string]interface{}{"status": models.AuctionClosed, "updated_at": now})
		if result.Error != nil {
			return nil, fmt.Errorf("close auction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Lost the transition race, or an admin cancelled the
			// auction in the meantime. Either way nothing to award.
			return nil, ErrConcurrentClose
		}
	case models.AuctionClosed:
		// Retry path: re-run settlement for lots missed by an earlier
		// interrupted sweep.
	default:
		return nil, ErrAuctionFinal
	}

	report := &CloseReport{AuctionID: auction.ID}

	var lots []models.Lot
	if err := s.db.WithContext(ctx).Where("auction_id = ?", auction.ID).Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}

	for i := range lots {
		created, err := s.settleLot(ctx, &lots[i], now)
		if err != nil {
			return nil, err
		}
		report.LotsProcessed++
		if created {
			report.AwardsCreated++
		}
	}

	msg := fmt.Sprintf("auction %s lots=%d awards=%d", auction.ID, report.LotsProcessed, report.AwardsCreated)
	_ = s.logService.CreateLog(ctx, nil, LogActionAuctionClose, LogOutcomeSuccess, &msg)

	return report, nil
}

// settleLot snapshots the ranking projection for one lot. A lot that
// already carries an award was settled by a previous run and is left
// untouched. Without a qualifying leader no award is created and all
// bids are marked lost.
func (s *ClosingService) settleLot(ctx context.Context, lot *models.Lot, now time.Time) (bool, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Award{}).Where("lot_id = ?", lot.ID).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("check award: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	var bids []models.Bid
	if err := s.db.WithContext(ctx).Where("lot_id = ?", lot.ID).Find(&bids).Error; err != nil {
		return false, fmt.Errorf("load bids: %w", err)
	}

	ranking := RankLotBids(bids)
	leader := ranking.Leader
	qualifies := leader != nil && (!lot.HasFloor() || !leader.Amount.LessThan(lot.MinBid))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if qualifies {
			award := models.Award{
				ID:            uuid.NewString(),
				LotID:         lot.ID,
				UserID:        leader.UserID,
				WinningBidID:  leader.ID,
				WinningAmount: leader.Amount,
				AwardedAt:     now,
			}
			if err := tx.Create(&award).Error; err != nil {
				return fmt.Errorf("create award: %w", err)
			}
			if err := tx.Model(&models.Bid{}).Where("id = ?", leader.ID).Update("status", models.BidWinning).Error; err != nil {
				return fmt.Errorf("mark winning bid: %w", err)
			}
			if err := tx.Model(&models.Bid{}).Where("lot_id = ? AND id <> ?", lot.ID, leader.ID).Update("status", models.BidLost).Error; err != nil {
				return fmt.Errorf("mark lost bids: %w", err)
			}
			return nil
		}

		if err := tx.Model(&models.Bid{}).Where("lot_id = ?", lot.ID).Update("status", models.BidLost).Error; err != nil {
			return fmt.Errorf("mark lost bids: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return qualifies, nil
}
