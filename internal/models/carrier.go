package models

import "time"

type Carrier struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"carrier_id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
