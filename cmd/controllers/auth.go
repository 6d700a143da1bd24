package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type LoginProvider interface {
	Login(ctx context.Context, email string, password string, role string) (services.LoginResult, error)
}

type AuthController struct {
	service LoginProvider
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	UserID        string  `json:"user_id"`
	Email         string  `json:"email"`
	CompanyName   *string `json:"company_name,omitempty"`
	Role          string  `json:"role"`
	DepositStatus string  `json:"deposit_status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewAuthController(service LoginProvider) (*AuthController, error) {
	if service == nil {
		return nil, errors.New("auth service is nil")
	}

	return &AuthController{service: service}, nil
}

func (c *AuthController) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) error {
	if c == nil {
		return errors.New("auth controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}
	if auth == nil {
		return errors.New("auth middleware is nil")
	}

	router.POST("/login", c.login(models.RoleClient))
	router.POST("/admin/login", c.login(models.RoleAdmin))
	router.GET("/profile", auth, c.profile)
	return nil
}

func (c *AuthController) login(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req LoginRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
			return
		}

		result, err := c.service.Login(ctx.Request.Context(), req.Email, req.Password, role)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			case errors.Is(err, services.ErrInactiveAccount):
				ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "account is inactive"})
			default:
				ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to log in"})
			}
			return
		}

		ctx.JSON(http.StatusOK, LoginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			User: UserResponse{
				UserID:        result.User.ID,
				Email:         result.User.Email,
				CompanyName:   result.User.CompanyName,
				Role:          result.User.Role,
				DepositStatus: result.User.DepositStatus,
			},
		})
	}
}

func (c *AuthController) profile(ctx *gin.Context) {
	identity, ok := CurrentIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token is invalid"})
		return
	}

	ctx.JSON(http.StatusOK, UserResponse{
		UserID:        identity.UserID,
		Email:         identity.Email,
		CompanyName:   identity.CompanyName,
		Role:          identity.Role,
		DepositStatus: identity.DepositStatus,
	})
}
