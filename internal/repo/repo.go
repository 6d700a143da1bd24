package repo

import (
	"errors"
	"fmt"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Carrier{},
		&models.Auction{},
		&models.Lot{},
		&models.Bid{},
		&models.Award{},
		&models.Log{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists.
// Idempotent across restarts.
func EnsureAdmin(db *gorm.DB, email string, password string) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          models.RoleAdmin,
		DepositStatus: models.DepositCleared,
		IsActive:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	return nil
}
