package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrAuctionNotFound = errors.New("auction not found")
var ErrInvalidSchedule = errors.New("end time must be after start time")
var ErrInvalidStatusChange = errors.New("invalid auction status change")
var ErrAuctionFinal = errors.New("auction is already closed or cancelled")

type AuctionService struct {
	db         *gorm.DB
	logService LogWriter
}

type CreateAuctionInput struct {
	CarrierID       string
	Name            string
	StartTime       *time.Time
	EndTime         time.Time
	GradingGuide    *string
	IsVisible       bool
	CreatedByUserID *string
}

type UpdateAuctionInput struct {
	CarrierID    *string
	Name         *string
	StartTime    *time.Time
	EndTime      *time.Time
	Status       *models.AuctionStatus
	GradingGuide *string
	IsVisible    *bool
}

// AuctionSummary is the admin listing row, auction fields plus the
// carrier name and lot count.
type AuctionSummary struct {
	models.Auction
	CarrierName string `json:"carrier_name"`
	LotCount    int64  `json:"lot_count"`
}

func NewAuctionService(db *gorm.DB, logService LogWriter) (*AuctionService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &AuctionService{db: db, logService: logService}, nil
}

func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("auction service is nil")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("auction name is required")
	}
	if in.CarrierID == "" {
		return nil, errors.New("carrier_id is required")
	}

	var carrierCount int64
	if err := s.db.WithContext(ctx).Model(&models.Carrier{}).Where("id = ?", in.CarrierID).Count(&carrierCount).Error; err != nil {
		return nil, fmt.Errorf("check carrier: %w", err)
	}
	if carrierCount == 0 {
		return nil, ErrCarrierNotFound
	}

	now := time.Now().UTC()
	start := now
	if in.StartTime != nil {
		start = in.StartTime.UTC()
	}
	end := in.EndTime.UTC()
	if !end.After(start) {
		return nil, ErrInvalidSchedule
	}

	auction := models.Auction{
		ID:              uuid.NewString(),
		CarrierID:       in.CarrierID,
		Name:            name,
		StartTime:       start,
		EndTime:         end,
		Status:          models.AuctionScheduled,
		GradingGuide:    in.GradingGuide,
		IsVisible:       in.IsVisible,
		CreatedByUserID: in.CreatedByUserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.WithContext(ctx).Create(&auction).Error; err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	msg := fmt.Sprintf("created auction %s carrier=%s", auction.ID, auction.CarrierID)
	_ = s.logService.CreateLog(ctx, nil, LogActionAuctionAdmin, LogOutcomeSuccess, &msg)

	return &auction, nil
}

func (s *AuctionService) GetAuctions(ctx context.Context) ([]AuctionSummary, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("auction service is nil")
	}

	var summaries []AuctionSummary
	err := s.db.WithContext(ctx).Model(&models.Auction{}).
		Select("auctions.*, carriers.name AS carrier_name, (SELECT COUNT(*) FROM lots WHERE lots.auction_id = auctions.id) AS lot_count").
		Joins("JOIN carriers ON carriers.id = auctions.carrier_id").
		Order("auctions.created_at desc").
		Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("get auctions: %w", err)
	}

	return summaries, nil
}

func (s *AuctionService) GetAuction(ctx context.Context, id string) (*models.Auction, []models.Lot, error) {
	if s == nil || s.db == nil {
		return nil, nil, errors.New("auction service is nil")
	}
	if id == "" {
		return nil, nil, ErrAuctionNotFound
	}

	var auction models.Auction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAuctionNotFound
		}
		return nil, nil, fmt.Errorf("get auction: %w", err)
	}

	var lots []models.Lot
	if err := s.db.WithContext(ctx).Where("auction_id = ?", auction.ID).Order("lot_identifier").Find(&lots).Error; err != nil {
		return nil, nil, fmt.Errorf("get lots: %w", err)
	}

	return &auction, lots, nil
}

func (s *AuctionService) UpdateAuction(ctx context.Context, id string, in UpdateAuctionInput) (*models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("auction service is nil")
	}

	auction, _, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CarrierID != nil && *in.CarrierID != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Carrier{}).Where("id = ?", *in.CarrierID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check carrier: %w", err)
		}
		if count == 0 {
			return nil, ErrCarrierNotFound
		}
		auction.CarrierID = *in.CarrierID
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		auction.Name = strings.TrimSpace(*in.Name)
	}
	if in.StartTime != nil {
		auction.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		auction.EndTime = in.EndTime.UTC()
	}
	if !auction.EndTime.After(auction.StartTime) {
		return nil, ErrInvalidSchedule
	}
	if in.Status != nil && *in.Status != auction.Status {
		if !models.CanTransitionAuction(auction.Status, *in.Status) {
			return nil, ErrInvalidStatusChange
		}
		auction.Status = *in.Status
	}
	if in.GradingGuide != nil {
		auction.GradingGuide = in.GradingGuide
	}
	if in.IsVisible != nil {
		auction.IsVisible = *in.IsVisible
	}

	auction.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(auction).Error; err != nil {
		return nil, fmt.Errorf("update auction: %w", err)
	}

	return auction, nil
}

// CancelAuction performs the terminal scheduled/active -> cancelled
// transition as a single conditional update, so a cancel racing a close
// sweep cannot both land: whichever writes first wins and the other
// sees zero rows.
func (s *AuctionService) CancelAuction(ctx context.Context, id string) (*models.Auction, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("auction service is nil")
	}

	auction, _, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ? AND status IN ?", id, []models.AuctionStatus{models.AuctionScheduled, models.AuctionActive}).
		Updates(map[string]interface{}{"status": models.AuctionCancelled, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("cancel auction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAuctionFinal
	}

	auction.Status = models.AuctionCancelled

	msg := fmt.Sprintf("cancelled auction %s", auction.ID)
	_ = s.logService.CreateLog(ctx, nil, LogActionAuctionAdmin, LogOutcomeSuccess, &msg)

	return auction, nil
}

// DeleteAuction removes the auction and cascades over its lots, their
// bids, and their awards in one transaction.
func (s *AuctionService) DeleteAuction(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("auction service is nil")
	}

	auction, lots, err := s.GetAuction(ctx, id)
	if err != nil {
		return err
	}

	lotIDs := make([]string, 0, len(lots))
	for _, lot := range lots {
		lotIDs = append(lotIDs, lot.ID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(lotIDs) > 0 {
			if err := tx.Where("lot_id IN ?", lotIDs).Delete(&models.Award{}).Error; err != nil {
				return fmt.Errorf("delete awards: %w", err)
			}
			if err := tx.Where("lot_id IN ?", lotIDs).Delete(&models.Bid{}).Error; err != nil {
				return fmt.Errorf("delete bids: %w", err)
			}
			if err := tx.Where("auction_id = ?", auction.ID).Delete(&models.Lot{}).Error; err != nil {
				return fmt.Errorf("delete lots: %w", err)
			}
		}
		if err := tx.Where("id = ?", auction.ID).Delete(&models.Auction{}).Error; err != nil {
			return fmt.Errorf("delete auction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("deleted auction %s lots=%d", auction.ID, len(lotIDs))
	_ = s.logService.CreateLog(ctx, nil, LogActionAuctionAdmin, LogOutcomeSuccess, &msg)

	return nil
}
