package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type CarrierProvider interface {
	CreateCarrier(ctx context.Context, name string) (*models.Carrier, error)
	GetCarriers(ctx context.Context) ([]models.Carrier, error)
	RenameCarrier(ctx context.Context, id string, name string) (*models.Carrier, error)
}

type CarriersController struct {
	service CarrierProvider
}

type CarrierRequest struct {
	Name string `json:"name" binding:"required"`
}

type CarriersResponse struct {
	Carriers []models.Carrier `json:"carriers"`
}

func NewCarriersController(service CarrierProvider) (*CarriersController, error) {
	if service == nil {
		return nil, errors.New("carrier service is nil")
	}

	return &CarriersController{service: service}, nil
}

func (c *CarriersController) RegisterRoutes(admin *gin.RouterGroup) error {
	if c == nil {
		return errors.New("carriers controller is nil")
	}
	if admin == nil {
		return errors.New("router group is nil")
	}

	admin.POST("/carriers", c.createCarrier)
	admin.GET("/carriers", c.getCarriers)
	admin.PUT("/carriers/:carrierId", c.renameCarrier)
	return nil
}

func (c *CarriersController) createCarrier(ctx *gin.Context) {
	var req CarrierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "carrier name is required"})
		return
	}

	carrier, err := c.service.CreateCarrier(ctx.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrCarrierExists) {
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "carrier with this name already exists"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create carrier"})
		return
	}

	ctx.JSON(http.StatusCreated, carrier)
}

func (c *CarriersController) getCarriers(ctx *gin.Context) {
	carriers, err := c.service.GetCarriers(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load carriers"})
		return
	}

	ctx.JSON(http.StatusOK, CarriersResponse{Carriers: carriers})
}

func (c *CarriersController) renameCarrier(ctx *gin.Context) {
	var req CarrierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "carrier name is required"})
		return
	}

	carrier, err := c.service.RenameCarrier(ctx.Request.Context(), ctx.Param("carrierId"), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCarrierNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "carrier not found"})
		case errors.Is(err, services.ErrCarrierExists):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "carrier with this name already exists"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to rename carrier"})
		}
		return
	}

	ctx.JSON(http.StatusOK, carrier)
}
