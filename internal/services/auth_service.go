package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInactiveAccount = errors.New("account is inactive")
var ErrInvalidToken = errors.New("invalid token")

const tokenTTL = 24 * time.Hour

// Identity is the request-scoped caller context passed into engine
// operations. It is resolved from the bearer token on every request;
// deposit status is read fresh from the user row, not from the token.
type Identity struct {
	UserID        string
	Email         string
	CompanyName   *string
	Role          string
	DepositStatus string
	IsActive      bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// CanBid mirrors models.User.CanBid for the request-scoped identity.
func (i Identity) CanBid() bool {
	return i.DepositStatus == models.DepositOnFile || i.DepositStatus == models.DepositCleared
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db     *gorm.DB
	secret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	return &AuthService{db: db, secret: []byte(jwtSecret)}, nil
}

// Login authenticates a user of the given role and issues an HS256
// token. The role check keeps the admin and client login endpoints
// from accepting each other's accounts.
func (s *AuthService) Login(ctx context.Context, email string, password string, role string) (LoginResult, error) {
	if s == nil || s.db == nil {
		return LoginResult{}, errors.New("auth service is nil")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if role != "" && user.Role != role {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return LoginResult{}, ErrInactiveAccount
	}

	now := time.Now().UTC()
	expiresAt := now.Add(tokenTTL)
	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	lastLogin := now
	user.LastLogin = &lastLogin
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", lastLogin).Error; err != nil {
		return LoginResult{}, fmt.Errorf("update last login: %w", err)
	}

	return LoginResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// Resolve verifies a bearer token and returns the caller's identity
// backed by the current user row.
func (s *AuthService) Resolve(ctx context.Context, token string) (Identity, error) {
	if s == nil || s.db == nil {
		return Identity{}, errors.New("auth service is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return Identity{}, ErrInactiveAccount
	}

	return Identity{
		UserID:        user.ID,
		Email:         user.Email,
		CompanyName:   user.CompanyName,
		Role:          user.Role,
		DepositStatus: user.DepositStatus,
		IsActive:      user.IsActive,
	}, nil
}
