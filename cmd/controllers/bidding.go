package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type BidProvider interface {
	SubmitBid(ctx context.Context, identity services.Identity, auctionID string, lotID string, amount decimal.Decimal) (*models.Bid, error)
}

type BidHistoryProvider interface {
	MyBids(ctx context.Context, userID string) ([]services.MyBid, error)
	MyWins(ctx context.Context, userID string) ([]services.Win, error)
}

type BiddingController struct {
	bids    BidProvider
	history BidHistoryProvider
}

type SubmitBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type MyBidsResponse struct {
	Bids []services.MyBid `json:"bids"`
}

type MyWinsResponse struct {
	Wins []services.Win `json:"wins"`
}

func NewBiddingController(bids BidProvider, history BidHistoryProvider) (*BiddingController, error) {
	if bids == nil {
		return nil, errors.New("bidding service is nil")
	}
	if history == nil {
		return nil, errors.New("catalog service is nil")
	}

	return &BiddingController{bids: bids, history: history}, nil
}

func (c *BiddingController) RegisterRoutes(authed *gin.RouterGroup) error {
	if c == nil {
		return errors.New("bidding controller is nil")
	}
	if authed == nil {
		return errors.New("router group is nil")
	}

	authed.POST("/auctions/:auctionId/lots/:lotId/bid", c.submitBid)
	authed.GET("/my-bids", c.myBids)
	authed.GET("/my-wins", c.myWins)
	return nil
}

func (c *BiddingController) submitBid(ctx *gin.Context) {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token is invalid"})
		return
	}

	var req SubmitBidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "bid amount is required"})
		return
	}

	bid, err := c.bids.SubmitBid(ctx.Request.Context(), identity, ctx.Param("auctionId"), ctx.Param("lotId"), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuctionNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
		case errors.Is(err, services.ErrLotNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "lot not found"})
		case errors.Is(err, services.ErrAuctionNotOpen):
			ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "auction is not open for bidding"})
		case errors.Is(err, services.ErrBiddingNotAuthorized):
			ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "bidding restricted: deposit is not on file or cleared"})
		case errors.Is(err, services.ErrInvalidBidAmount):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "bid amount is invalid or below the minimum bid"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to submit bid"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, bid)
}

func (c *BiddingController) myBids(ctx *gin.Context) {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token is invalid"})
		return
	}

	bids, err := c.history.MyBids(ctx.Request.Context(), identity.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load bids"})
		return
	}

	ctx.JSON(http.StatusOK, MyBidsResponse{Bids: bids})
}

func (c *BiddingController) myWins(ctx *gin.Context) {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token is invalid"})
		return
	}

	wins, err := c.history.MyWins(ctx.Request.Context(), identity.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load wins"})
		return
	}

	ctx.JSON(http.StatusOK, MyWinsResponse{Wins: wins})
}
