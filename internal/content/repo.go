package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
)

// Repository owns story persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the story.
func (r *Repository) Create(ctx context.Context, story *models.Story) (*models.Story, error) {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

// FindByID loads one story.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// SetPublishedAt stamps the publish time.
func (r *Repository) SetPublishedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", id).
		Update("published_at", at).Error
}

// ListPublished returns live stories newest first.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Story, error) {
	var rows []models.Story
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND published_at IS NOT NULL", true).
		Order("published_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
