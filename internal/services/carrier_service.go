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

var ErrCarrierNotFound = errors.New("carrier not found")
var ErrCarrierExists = errors.New("carrier with this name already exists")

type CarrierService struct {
	db *gorm.DB
}

func NewCarrierService(db *gorm.DB) (*CarrierService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &CarrierService{db: db}, nil
}

func (s *CarrierService) CreateCarrier(ctx context.Context, name string) (*models.Carrier, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("carrier service is nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("carrier name is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Carrier{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check carrier name: %w", err)
	}
	if count > 0 {
		return nil, ErrCarrierExists
	}

	carrier := models.Carrier{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&carrier).Error; err != nil {
		return nil, fmt.Errorf("create carrier: %w", err)
	}

	return &carrier, nil
}

func (s *CarrierService) GetCarriers(ctx context.Context) ([]models.Carrier, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("carrier service is nil")
	}

	var carriers []models.Carrier
	if err := s.db.WithContext(ctx).Order("name").Find(&carriers).Error; err != nil {
		return nil, fmt.Errorf("get carriers: %w", err)
	}

	return carriers, nil
}

// RenameCarrier is the only permitted mutation; carriers are otherwise
// immutable after creation.
func (s *CarrierService) RenameCarrier(ctx context.Context, id string, name string) (*models.Carrier, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("carrier service is nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("carrier name is required")
	}

	var carrier models.Carrier
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&carrier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarrierNotFound
		}
		return nil, fmt.Errorf("get carrier: %w", err)
	}

	if name != carrier.Name {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Carrier{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check carrier name: %w", err)
		}
		if count > 0 {
			return nil, ErrCarrierExists
		}
	}

	carrier.Name = name
	if err := s.db.WithContext(ctx).Save(&carrier).Error; err != nil {
		return nil, fmt.Errorf("rename carrier: %w", err)
	}

	return &carrier, nil
}
