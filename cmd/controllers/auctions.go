package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

// Uploaded lot files are kept small; bulk imports beyond this should
// be split.
const maxLotUploadBytes = 10 << 20

type AuctionAdminProvider interface {
	CreateAuction(ctx context.Context, in services.CreateAuctionInput) (*models.Auction, error)
	GetAuctions(ctx context.Context) ([]services.AuctionSummary, error)
	GetAuction(ctx context.Context, id string) (*models.Auction, []models.Lot, error)
	UpdateAuction(ctx context.Context, id string, in services.UpdateAuctionInput) (*models.Auction, error)
	CancelAuction(ctx context.Context, id string) (*models.Auction, error)
	DeleteAuction(ctx context.Context, id string) error
}

type LotImporter interface {
	ImportLots(ctx context.Context, auctionID string, filename string, content []byte) (int, error)
	UpdateLot(ctx context.Context, lotID string, in services.UpdateLotInput) (*models.Lot, error)
}

type StatusSweeper interface {
	ProcessStatuses(ctx context.Context) (services.SweepReport, error)
	CloseAuction(ctx context.Context, auctionID string) (*services.CloseReport, error)
}

type AuctionsController struct {
	auctions AuctionAdminProvider
	lots     LotImporter
	sweeper  StatusSweeper
}

type CreateAuctionRequest struct {
	CarrierID    string     `json:"carrier_id" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      time.Time  `json:"end_time" binding:"required"`
	GradingGuide *string    `json:"grading_guide"`
	IsVisible    bool       `json:"is_visible"`
}

type UpdateAuctionRequest struct {
	CarrierID    *string    `json:"carrier_id"`
	Name         *string    `json:"name"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Status       *string    `json:"status"`
	GradingGuide *string    `json:"grading_guide"`
	IsVisible    *bool      `json:"is_visible"`
}

type UpdateLotRequest struct {
	DeviceName    *string          `json:"device_name"`
	DeviceDetails *string          `json:"device_details"`
	ImageURL      *string          `json:"image_url"`
	Condition     *string          `json:"condition"`
	Quantity      *int             `json:"quantity"`
	MinBid        *decimal.Decimal `json:"min_bid"`
}

type AuctionsResponse struct {
	Auctions []services.AuctionSummary `json:"auctions"`
}

type AuctionWithLotsResponse struct {
	Auction models.Auction `json:"auction"`
	Lots    []models.Lot   `json:"lots"`
}

type ImportLotsResponse struct {
	Imported int `json:"imported"`
}

func NewAuctionsController(auctions AuctionAdminProvider, lots LotImporter, sweeper StatusSweeper) (*AuctionsController, error) {
	if auctions == nil {
		return nil, errors.New("auction service is nil")
	}
	if lots == nil {
		return nil, errors.New("lot import service is nil")
	}
	if sweeper == nil {
		return nil, errors.New("closing service is nil")
	}

	return &AuctionsController{auctions: auctions, lots: lots, sweeper: sweeper}, nil
}

func (c *AuctionsController) RegisterRoutes(admin *gin.RouterGroup) error {
	if c == nil {
		return errors.New("auctions controller is nil")
	}
	if admin == nil {
		return errors.New("router group is nil")
	}

	admin.POST("/auctions", c.createAuction)
	admin.GET("/auctions", c.getAuctions)
	// Not nested under /auctions/:auctionId; gin's tree rejects a
	// static segment next to a param one.
	admin.POST("/process-statuses", c.processStatuses)
	admin.GET("/auctions/:auctionId", c.getAuction)
	admin.PUT("/auctions/:auctionId", c.updateAuction)
	admin.DELETE("/auctions/:auctionId", c.deleteAuction)
	admin.POST("/auctions/:auctionId/cancel", c.cancelAuction)
	admin.POST("/auctions/:auctionId/close", c.closeAuction)
	admin.POST("/auctions/:auctionId/upload_lots", c.uploadLots)
	admin.PUT("/lots/:lotId", c.updateLot)
	return nil
}

func (c *AuctionsController) createAuction(ctx *gin.Context) {
	var req CreateAuctionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "carrier_id, name and end_time are required"})
		return
	}

	in := services.CreateAuctionInput{
		CarrierID:    req.CarrierID,
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		GradingGuide: req.GradingGuide,
		IsVisible:    req.IsVisible,
	}
	if identity, ok := CurrentIdentity(ctx); ok {
		creator := identity.UserID
		in.CreatedByUserID = &creator
	}

	auction, err := c.auctions.CreateAuction(ctx.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCarrierNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "carrier not found"})
		case errors.Is(err, services.ErrInvalidSchedule):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "end time must be after start time"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create auction"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, auction)
}

func (c *AuctionsController) getAuctions(ctx *gin.Context) {
	auctions, err := c.auctions.GetAuctions(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load auctions"})
		return
	}

	ctx.JSON(http.StatusOK, AuctionsResponse{Auctions: auctions})
}

func (c *AuctionsController) getAuction(ctx *gin.Context) {
	auction, lots, err := c.auctions.GetAuction(ctx.Request.Context(), ctx.Param("auctionId"))
	if err != nil {
		if errors.Is(err, services.ErrAuctionNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load auction"})
		return
	}

	ctx.JSON(http.StatusOK, AuctionWithLotsResponse{Auction: *auction, Lots: lots})
}

func (c *AuctionsController) updateAuction(ctx *gin.Context) {
	var req UpdateAuctionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	in := services.UpdateAuctionInput{
		CarrierID:    req.CarrierID,
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		GradingGuide: req.GradingGuide,
		IsVisible:    req.IsVisible,
	}
	if req.Status != nil {
		status := models.AuctionStatus(*req.Status)
		in.Status = &status
	}

	auction, err := c.auctions.UpdateAuction(ctx.Request.Context(), ctx.Param("auctionId"), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
		case errors.Is(err, services.ErrCarrierNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "carrier not found"})
		case errors.Is(err, services.ErrInvalidSchedule):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "end time must be after start time"})
		case errors.Is(err, services.ErrInvalidStatusChange):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid auction status change"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update auction"})
		}
		return
	}

	ctx.JSON(http.StatusOK, auction)
}

func (c *AuctionsController) deleteAuction(ctx *gin.Context) {
	if err := c.auctions.DeleteAuction(ctx.Request.Context(), ctx.Param("auctionId")); err != nil {
		if errors.Is(err, services.ErrAuctionNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete auction"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (c *AuctionsController) cancelAuction(ctx *gin.Context) {
	auction, err := c.auctions.CancelAuction(ctx.Request.Context(), ctx.Param("auctionId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
		case errors.Is(err, services.ErrAuctionFinal):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "auction is already closed or cancelled"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to cancel auction"})
		}
		return
	}

	ctx.JSON(http.StatusOK, auction)
}

func (c *AuctionsController) closeAuction(ctx *gin.Context) {
	report, err := c.sweeper.CloseAuction(ctx.Request.Context(), ctx.Param("auctionId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
		case errors.Is(err, services.ErrAuctionNotEnded):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "auction has not ended yet"})
		case errors.Is(err, services.ErrConcurrentClose):
			// Another close sweep won the transition; not an error.
			ctx.JSON(http.StatusOK, gin.H{"status": "already closing"})
		case errors.Is(err, services.ErrAuctionFinal):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "auction is cancelled or not yet active"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to close auction"})
		}
		return
	}

	ctx.JSON(http.StatusOK, report)
}

func (c *AuctionsController) processStatuses(ctx *gin.Context) {
	report, err := c.sweeper.ProcessStatuses(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to process auction statuses"})
		return
	}

	ctx.JSON(http.StatusOK, report)
}

func (c *AuctionsController) uploadLots(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}
	if file.Size > maxLotUploadBytes {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is too large"})
		return
	}

	opened, err := file.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
		return
	}
	content, readErr := io.ReadAll(opened)
	closeErr := opened.Close()
	if readErr != nil || closeErr != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
		return
	}

	imported, err := c.lots.ImportLots(ctx.Request.Context(), ctx.Param("auctionId"), file.Filename, content)
	if err != nil {
		var rejected *services.ErrImportRejected
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
		case errors.Is(err, services.ErrUnsupportedFileType):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "file type not allowed"})
		case errors.Is(err, services.ErrLotsLocked):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "lots cannot be changed after the auction is activated"})
		case errors.As(err, &rejected):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "no lots were added", "rows": rejected.Rows})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to import lots"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, ImportLotsResponse{Imported: imported})
}

func (c *AuctionsController) updateLot(ctx *gin.Context) {
	var req UpdateLotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	lot, err := c.lots.UpdateLot(ctx.Request.Context(), ctx.Param("lotId"), services.UpdateLotInput{
		DeviceName:    req.DeviceName,
		DeviceDetails: req.DeviceDetails,
		ImageURL:      req.ImageURL,
		Condition:     req.Condition,
		Quantity:      req.Quantity,
		MinBid:        req.MinBid,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLotNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "lot not found"})
		case errors.Is(err, services.ErrLotsLocked):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "lots cannot be changed after the auction is activated"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update lot"})
		}
		return
	}

	ctx.JSON(http.StatusOK, lot)
}
