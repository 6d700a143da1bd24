package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

type UserProvider interface {
	CreateUser(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in services.UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UsersController struct {
	service UserProvider
}

type CreateUserRequest struct {
	Email         string  `json:"email" binding:"required"`
	Password      string  `json:"password" binding:"required"`
	CompanyName   *string `json:"company_name"`
	Role          string  `json:"role"`
	DepositStatus string  `json:"deposit_status"`
	IsActive      *bool   `json:"is_active"`
}

type UpdateUserRequest struct {
	Email         *string `json:"email"`
	Password      *string `json:"password"`
	CompanyName   *string `json:"company_name"`
	Role          *string `json:"role"`
	DepositStatus *string `json:"deposit_status"`
	IsActive      *bool   `json:"is_active"`
}

type UsersResponse struct {
	Users []models.User `json:"users"`
}

func NewUsersController(service UserProvider) (*UsersController, error) {
	if service == nil {
		return nil, errors.New("user service is nil")
	}

	return &UsersController{service: service}, nil
}

func (c *UsersController) RegisterRoutes(admin *gin.RouterGroup) error {
	if c == nil {
		return errors.New("users controller is nil")
	}
	if admin == nil {
		return errors.New("router group is nil")
	}

	admin.POST("/users", c.createUser)
	admin.GET("/users", c.getUsers)
	admin.GET("/users/:userId", c.getUser)
	admin.PUT("/users/:userId", c.updateUser)
	admin.DELETE("/users/:userId", c.deleteUser)
	return nil
}

func (c *UsersController) createUser(ctx *gin.Context) {
	var req CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "email and password are required"})
		return
	}

	user, err := c.service.CreateUser(ctx.Request.Context(), services.CreateUserInput{
		Email:         req.Email,
		Password:      req.Password,
		CompanyName:   req.CompanyName,
		Role:          req.Role,
		DepositStatus: req.DepositStatus,
		IsActive:      req.IsActive,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "user with this email already exists"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create user"})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (c *UsersController) getUsers(ctx *gin.Context) {
	users, err := c.service.GetUsers(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load users"})
		return
	}

	ctx.JSON(http.StatusOK, UsersResponse{Users: users})
}

func (c *UsersController) getUser(ctx *gin.Context) {
	user, err := c.service.GetUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load user"})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (c *UsersController) updateUser(ctx *gin.Context) {
	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := c.service.UpdateUser(ctx.Request.Context(), ctx.Param("userId"), services.UpdateUserInput{
		Email:         req.Email,
		Password:      req.Password,
		CompanyName:   req.CompanyName,
		Role:          req.Role,
		DepositStatus: req.DepositStatus,
		IsActive:      req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, services.ErrEmailTaken):
			ctx.JSON(http.StatusConflict, ErrorResponse{Error: "user with this email already exists"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update user"})
		}
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (c *UsersController) deleteUser(ctx *gin.Context) {
	err := c.service.DeleteUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, services.ErrProtectedAccount):
			ctx.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot delete an admin account"})
		default:
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete user"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}
