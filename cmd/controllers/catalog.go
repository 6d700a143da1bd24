package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type CatalogProvider interface {
	BrowseAuctions(ctx context.Context, carrierID string) ([]services.CarrierAuctions, error)
	AuctionDetail(ctx context.Context, auctionID string, viewerUserID string) (*services.AuctionDetail, error)
}

type CatalogController struct {
	service CatalogProvider
}

type BrowseResponse struct {
	AuctionsByCarrier []services.CarrierAuctions `json:"auctions_by_carrier"`
}

func NewCatalogController(service CatalogProvider) (*CatalogController, error) {
	if service == nil {
		return nil, errors.New("catalog service is nil")
	}

	return &CatalogController{service: service}, nil
}

func (c *CatalogController) RegisterRoutes(authed *gin.RouterGroup) error {
	if c == nil {
		return errors.New("catalog controller is nil")
	}
	if authed == nil {
		return errors.New("router group is nil")
	}

	authed.GET("/auctions", c.browse)
	authed.GET("/auctions/:auctionId", c.auctionDetail)
	return nil
}

func (c *CatalogController) browse(ctx *gin.Context) {
	grouped, err := c.service.BrowseAuctions(ctx.Request.Context(), ctx.Query("carrier_id"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load auctions"})
		return
	}

	ctx.JSON(http.StatusOK, BrowseResponse{AuctionsByCarrier: grouped})
}

func (c *CatalogController) auctionDetail(ctx *gin.Context) {
	viewerID := ""
	if identity, ok := CurrentIdentity(ctx); ok && !identity.IsAdmin() {
		viewerID = identity.UserID
	}

	detail, err := c.service.AuctionDetail(ctx.Request.Context(), ctx.Param("auctionId"), viewerID)
	if err != nil {
		if errors.Is(err, services.ErrAuctionNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "auction not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load auction"})
		return
	}

	ctx.JSON(http.StatusOK, detail)
}
