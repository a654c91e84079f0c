package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
	"github.com/ogp-platform/proforma-backend/pkg/validate"
)

// CreateStoryInput holds the validated payload to create a story.
type CreateStoryInput struct {
	Title    string `validate:"required"`
	Slug     string `validate:"required"`
	BodyHTML string `validate:"required"`
	Tags     []string
	AuthorID *uuid.UUID
	Publish  bool
}

// Service exposes editorial content management.
type Service interface {
	Create(ctx context.Context, input CreateStoryInput) (*models.Story, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Story, error)
	Publish(ctx context.Context, id uuid.UUID) (*models.Story, error)
	ListPublished(ctx context.Context) ([]models.Story, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the content service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Create validates and inserts the story, optionally publishing immediately.
func (s *service) Create(ctx context.Context, input CreateStoryInput) (*models.Story, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	story := &models.Story{
		ID:       uuid.New(),
		AuthorID: input.AuthorID,
		Title:    input.Title,
		Slug:     input.Slug,
		BodyHTML: input.BodyHTML,
		Tags:     pq.StringArray(input.Tags),
		IsActive: true,
	}
	if input.Publish {
		publishedAt := s.now()
		story.PublishedAt = &publishedAt
	}

	created, err := s.repo.Create(ctx, story)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "story slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert story")
	}
	return created, nil
}

// Get loads one story.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "story not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load story")
	}
	return story, nil
}

// Publish stamps the story's publish time. Publishing twice is a no-op; the
// original timestamp stands.
func (s *service) Publish(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if story.PublishedAt != nil {
		return story, nil
	}

	publishedAt := s.now()
	if err := s.repo.SetPublishedAt(ctx, id, publishedAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: publish story")
	}
	story.PublishedAt = &publishedAt
	return story, nil
}

// ListPublished returns live stories newest first. Archived stories never
// appear regardless of their publish stamp.
func (s *service) ListPublished(ctx context.Context) ([]models.Story, error) {
	rows, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stories")
	}
	return rows, nil
}
