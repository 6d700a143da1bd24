package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

// CatalogService serves the client-facing read projections: browse,
// auction detail, my-bids and my-wins. Pure queries, no side effects;
// live bid statuses come from the same ranking function the close
// sweep uses.
type CatalogService struct {
	db *gorm.DB
}

type CarrierAuctions struct {
	CarrierID   string           `json:"carrier_id"`
	CarrierName string           `json:"carrier_name"`
	Auctions    []AuctionSummary `json:"auctions"`
}

type LotStanding struct {
	models.Lot
	// MyBid is the viewer's best bid on this lot, nil when none.
	MyBid *models.Bid `json:"my_bid,omitempty"`
	// MyBidStatus is the live projection of MyBid, empty when none.
	MyBidStatus models.BidStatus `json:"my_bid_status,omitempty"`
}

type AuctionDetail struct {
	Auction     models.Auction `json:"auction"`
	CarrierName string         `json:"carrier_name"`
	Lots        []LotStanding  `json:"lots"`
}

type MyBid struct {
	BidID          string               `json:"bid_id"`
	Amount         decimal.Decimal      `json:"amount"`
	BidTime        time.Time            `json:"bid_time"`
	Status         models.BidStatus     `json:"status"`
	LotID          string               `json:"lot_id"`
	LotIdentifier  string               `json:"lot_identifier"`
	DeviceName     string               `json:"device_name"`
	AuctionID      string               `json:"auction_id"`
	AuctionName    string               `json:"auction_name"`
	AuctionStatus  models.AuctionStatus `json:"auction_status"`
	AuctionEndTime time.Time            `json:"auction_end_time"`
}

type Win struct {
	AwardID        string          `json:"award_id"`
	WinningAmount  decimal.Decimal `json:"winning_amount"`
	AwardedAt      time.Time       `json:"awarded_at"`
	WinningBidTime time.Time       `json:"winning_bid_time"`
	LotID          string          `json:"lot_id"`
	LotIdentifier  string          `json:"lot_identifier"`
	DeviceName     string          `json:"device_name"`
	DeviceDetails  *string         `json:"device_details,omitempty"`
	ImageURL       *string         `json:"image_url,omitempty"`
	AuctionName    string          `json:"auction_name"`
	AuctionEndTime time.Time       `json:"auction_end_time"`
}

func NewCatalogService(db *gorm.DB) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &CatalogService{db: db}, nil
}

// BrowseAuctions lists active, visible auctions grouped by carrier.
// Hidden auctions never appear here regardless of status. Browsing is
// open to any authenticated caller; deposit status gates only bidding.
func (s *CatalogService) BrowseAuctions(ctx context.Context, carrierID string) ([]CarrierAuctions, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog service is nil")
	}

	query := s.db.WithContext(ctx).Model(&models.Auction{}).
		Select("auctions.*, carriers.name AS carrier_name, (SELECT COUNT(*) FROM lots WHERE lots.auction_id = auctions.id) AS lot_count").
		Joins("JOIN carriers ON carriers.id = auctions.carrier_id").
		Where("auctions.status = ? AND auctions.is_visible = ?", models.AuctionActive, true).
		Order("auctions.end_time asc")
	if carrierID != "" {
		query = query.Where("auctions.carrier_id = ?", carrierID)
	}

	var summaries []AuctionSummary
	if err := query.Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("browse auctions: %w", err)
	}

	grouped := make([]CarrierAuctions, 0)
	index := make(map[string]int)
	for _, summary := range summaries {
		pos, ok := index[summary.CarrierID]
		if !ok {
			pos = len(grouped)
			index[summary.CarrierID] = pos
			grouped = append(grouped, CarrierAuctions{
				CarrierID:   summary.CarrierID,
				CarrierName: summary.CarrierName,
			})
		}
		grouped[pos].Auctions = append(grouped[pos].Auctions, summary)
	}

	return grouped, nil
}

// AuctionDetail returns one visible auction with its lots and, when
// viewerUserID is set, the viewer's standing per lot.
func (s *CatalogService) AuctionDetail(ctx context.Context, auctionID string, viewerUserID string) (*AuctionDetail, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog service is nil")
	}

	var auction models.Auction
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_visible = ?", auctionID, true).
		First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, fmt.Errorf("load auction: %w", err)
	}

	var carrier models.Carrier
	if err := s.db.WithContext(ctx).Where("id = ?", auction.CarrierID).First(&carrier).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load carrier: %w", err)
	}

	var lots []models.Lot
	if err := s.db.WithContext(ctx).Where("auction_id = ?", auction.ID).Order("lot_identifier").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}

	detail := &AuctionDetail{Auction: auction, CarrierName: carrier.Name, Lots: make([]LotStanding, 0, len(lots))}
	for _, lot := range lots {
		standing := LotStanding{Lot: lot}
		if viewerUserID != "" {
			myBid, status, err := s.lotStanding(ctx, lot, auction.Status, viewerUserID)
			if err != nil {
				return nil, err
			}
			standing.MyBid = myBid
			standing.MyBidStatus = status
		}
		detail.Lots = append(detail.Lots, standing)
	}

	return detail, nil
}

// MyBids lists the caller's bids across all auctions with the live
// ranking projection applied.
func (s *CatalogService) MyBids(ctx context.Context, userID string) ([]MyBid, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog service is nil")
	}
	if userID == "" {
		return nil, errors.New("user id is empty")
	}

	var bids []models.Bid
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("bid_time desc").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("load bids: %w", err)
	}

	out := make([]MyBid, 0, len(bids))
	for _, bid := range bids {
		var lot models.Lot
		if err := s.db.WithContext(ctx).Where("id = ?", bid.LotID).First(&lot).Error; err != nil {
			return nil, fmt.Errorf("load lot: %w", err)
		}
		var auction models.Auction
		if err := s.db.WithContext(ctx).Where("id = ?", lot.AuctionID).First(&auction).Error; err != nil {
			return nil, fmt.Errorf("load auction: %w", err)
		}

		status, err := s.projectStatus(ctx, bid, lot, auction.Status)
		if err != nil {
			return nil, err
		}

		out = append(out, MyBid{
			BidID:          bid.ID,
			Amount:         bid.Amount,
			BidTime:        bid.BidTime,
			Status:         status,
			LotID:          lot.ID,
			LotIdentifier:  lot.LotIdentifier,
			DeviceName:     lot.DeviceName,
			AuctionID:      auction.ID,
			AuctionName:    auction.Name,
			AuctionStatus:  auction.Status,
			AuctionEndTime: auction.EndTime,
		})
	}

	return out, nil
}

// MyWins lists the caller's awards joined with lot and auction detail.
func (s *CatalogService) MyWins(ctx context.Context, userID string) ([]Win, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog service is nil")
	}
	if userID == "" {
		return nil, errors.New("user id is empty")
	}

	var awards []models.Award
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("awarded_at desc").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("load awards: %w", err)
	}

	out := make([]Win, 0, len(awards))
	for _, award := range awards {
		var lot models.Lot
		if err := s.db.WithContext(ctx).Where("id = ?", award.LotID).First(&lot).Error; err != nil {
			return nil, fmt.Errorf("load lot: %w", err)
		}
		var auction models.Auction
		if err := s.db.WithContext(ctx).Where("id = ?", lot.AuctionID).First(&auction).Error; err != nil {
			return nil, fmt.Errorf("load auction: %w", err)
		}
		var winningBid models.Bid
		if err := s.db.WithContext(ctx).Where("id = ?", award.WinningBidID).First(&winningBid).Error; err != nil {
			return nil, fmt.Errorf("load winning bid: %w", err)
		}

		out = append(out, Win{
			AwardID:        award.ID,
			WinningAmount:  award.WinningAmount,
			AwardedAt:      award.AwardedAt,
			WinningBidTime: winningBid.BidTime,
			LotID:          lot.ID,
			LotIdentifier:  lot.LotIdentifier,
			DeviceName:     lot.DeviceName,
			DeviceDetails:  lot.DeviceDetails,
			ImageURL:       lot.ImageURL,
			AuctionName:    auction.Name,
			AuctionEndTime: auction.EndTime,
		})
	}

	return out, nil
}

// lotStanding computes the viewer's best bid and its projected status
// for one lot.
func (s *CatalogService) lotStanding(ctx context.Context, lot models.Lot, auctionStatus models.AuctionStatus, userID string) (*models.Bid, models.BidStatus, error) {
	var bids []models.Bid
	if err := s.db.WithContext(ctx).Where("lot_id = ?", lot.ID).Find(&bids).Error; err != nil {
		return nil, "", fmt.Errorf("load lot bids: %w", err)
	}

	ranking := RankLotBids(bids)
	myBest, ok := ranking.BestByUser[userID]
	if !ok {
		return nil, "", nil
	}

	awardedBidID, err := s.awardedBidID(ctx, lot.ID, auctionStatus)
	if err != nil {
		return nil, "", err
	}

	return myBest, ProjectBidStatus(*myBest, ranking, auctionStatus, awardedBidID), nil
}

func (s *CatalogService) projectStatus(ctx context.Context, bid models.Bid, lot models.Lot, auctionStatus models.AuctionStatus) (models.BidStatus, error) {
	var bids []models.Bid
	if err := s.db.WithContext(ctx).Where("lot_id = ?", lot.ID).Find(&bids).Error; err != nil {
		return "", fmt.Errorf("load lot bids: %w", err)
	}

	awardedBidID, err := s.awardedBidID(ctx, lot.ID, auctionStatus)
	if err != nil {
		return "", err
	}

	return ProjectBidStatus(bid, RankLotBids(bids), auctionStatus, awardedBidID), nil
}

func (s *CatalogService) awardedBidID(ctx context.Context, lotID string, auctionStatus models.AuctionStatus) (string, error) {
	if auctionStatus != models.AuctionClosed {
		return "", nil
	}

	var award models.Award
	err := s.db.WithContext(ctx).Where("lot_id = ?", lotID).First(&award).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load award: %w", err)
	}
	return award.WinningBidID, nil
}
