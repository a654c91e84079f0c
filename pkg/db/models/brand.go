package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand groups catalog products under a manufacturer label.
type Brand struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	LogoURL     *string    `gorm:"column:logo_url"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
