package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ogp-platform/proforma-backend/pkg/enums"
)

// Notification stores in-app notification payloads for admin users.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title     string                 `gorm:"column:title;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	RequestID *uuid.UUID             `gorm:"column:request_id;type:uuid"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
