package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	"github.com/ogp-platform/proforma-backend/pkg/pagination"
)

// Repository owns request persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the request with its snapshot lines.
func (r *Repository) Create(ctx context.Context, request *models.Request) (*models.Request, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// FindByID loads the request with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByNumber loads the request by its external number.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&request, "request_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateStatusWhere performs the compare-and-swap transition. The caller must
// inspect the affected row count: zero means the expected status no longer
// held (or the row is gone).
func (r *Repository) UpdateStatusWhere(ctx context.Context, id uuid.UUID, expected, target enums.RequestStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", target)
	return result.RowsAffected, result.Error
}

// StampNotified records the moment the customer was notified.
func (r *Repository) StampNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", id).
		Update("notified_at", at).Error
}

// ListFilter narrows the request listing.
type ListFilter struct {
	Status *enums.RequestStatus
	Page   pagination.Params
}

// List returns requests newest first, cursor-paginated. The second return
// value is the cursor for the next page, empty when this page is the last.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Request, string, error) {
	limit := pagination.NormalizeLimit(filter.Page.Limit)
	query := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Request
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
