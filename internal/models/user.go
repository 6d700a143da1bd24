package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

const (
	DepositPending = "pending"
	DepositOnFile  = "on_file"
	DepositCleared = "cleared"
)

type User struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email         string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash  string     `gorm:"type:text;not null" json:"-"`
	CompanyName   *string    `gorm:"type:text" json:"company_name,omitempty"`
	Role          string     `gorm:"type:text;not null;default:'client'" json:"role"`
	DepositStatus string     `gorm:"type:text;not null;default:'pending'" json:"deposit_status"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// CanBid reports whether the user's deposit standing allows bid
// submission. Browsing is never gated on deposit status.
func (u User) CanBid() bool {
	return u.DepositStatus == DepositOnFile || u.DepositStatus == DepositCleared
}
