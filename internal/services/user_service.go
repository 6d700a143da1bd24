package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already in use")
var ErrProtectedAccount = errors.New("cannot delete an admin account")

type UserService struct {
	db         *gorm.DB
	logService LogWriter
}

type CreateUserInput struct {
	Email         string
	Password      string
	CompanyName   *string
	Role          string
	DepositStatus string
	IsActive      *bool
}

type UpdateUserInput struct {
	Email         *string
	Password      *string
	CompanyName   *string
	Role          *string
	DepositStatus *string
	IsActive      *bool
}

func NewUserService(db *gorm.DB, logService LogWriter) (*UserService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &UserService{db: db, logService: logService}, nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("user service is nil")
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleClient
	}
	depositStatus := in.DepositStatus
	if depositStatus == "" {
		depositStatus = models.DepositPending
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	user := models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hash),
		CompanyName:   in.CompanyName,
		Role:          role,
		DepositStatus: depositStatus,
		IsActive:      isActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	msg := fmt.Sprintf("created user %s role=%s", user.Email, user.Role)
	_ = s.logService.CreateLog(ctx, nil, LogActionUserAdmin, LogOutcomeSuccess, &msg)

	return &user, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("user service is nil")
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("user service is nil")
	}
	if id == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("user service is nil")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email != "" && email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if in.CompanyName != nil {
		user.CompanyName = in.CompanyName
	}
	if in.Role != nil && *in.Role != "" {
		user.Role = *in.Role
	}
	if in.DepositStatus != nil && *in.DepositStatus != "" {
		user.DepositStatus = *in.DepositStatus
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	msg := fmt.Sprintf("updated user %s", user.ID)
	_ = s.logService.CreateLog(ctx, nil, LogActionUserAdmin, LogOutcomeSuccess, &msg)

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("user service is nil")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return ErrProtectedAccount
	}

	if err := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	msg := fmt.Sprintf("deleted user %s", user.ID)
	_ = s.logService.CreateLog(ctx, nil, LogActionUserAdmin, LogOutcomeSuccess, &msg)

	return nil
}
