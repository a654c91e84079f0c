package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Story is an editorial content entry (reviews, articles) shown on the storefront.
type Story struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID    *uuid.UUID     `gorm:"column:author_id;type:uuid"`
	Title       string         `gorm:"column:title;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	BodyHTML    string         `gorm:"column:body_html;not null"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	DeletedAt   *time.Time     `gorm:"column:deleted_at"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
