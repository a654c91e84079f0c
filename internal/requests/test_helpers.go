package requests

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/internal/sequence"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
)

const requestTestSchema = `
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  brand_id TEXT,
  category_id TEXT,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  base_price_cents INTEGER NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  is_featured BOOLEAN NOT NULL DEFAULT FALSE,
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE price_tiers (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  min_qty INTEGER NOT NULL,
  max_qty INTEGER NOT NULL DEFAULT 0,
  unit_price_cents INTEGER NOT NULL,
  created_at DATETIME
);
CREATE TABLE requests (
  id TEXT PRIMARY KEY,
  request_number TEXT NOT NULL UNIQUE,
  customer TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount_cents INTEGER NOT NULL,
  notes TEXT,
  notified_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE request_lines (
  id TEXT PRIMARY KEY,
  request_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
);
CREATE TABLE sequence_counters (
  year INTEGER PRIMARY KEY,
  last_issued INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`

// productStore is the pricing read path backed by the test database.
type productStore struct {
	conn *gorm.DB
}

func (p *productStore) FindForPricing(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := p.conn.WithContext(ctx).Preload("Tiers").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// recordingNotifier captures notifier invocations and can be told to fail.
type recordingNotifier struct {
	calls []notifierCall
	fail  error
}

type notifierCall struct {
	requestID uuid.UUID
	prior     enums.RequestStatus
	status    enums.RequestStatus
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, request *models.Request, prior enums.RequestStatus) error {
	n.calls = append(n.calls, notifierCall{
		requestID: request.ID,
		prior:     prior,
		status:    request.Status,
	})
	return n.fail
}

type requestTestEnv struct {
	conn     *gorm.DB
	svc      Service
	notifier *recordingNotifier
}

func setupRequestTest(t *testing.T) *requestTestEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(requestTestSchema).Error)

	allocator, err := sequence.NewAllocator(conn)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	events := outbox.NewService(outbox.NewRepository(conn), nil)

	svc, err := NewService(
		NewRepository(conn),
		db.NewWithConn(conn),
		allocator,
		&productStore{conn: conn},
		events,
		notifier,
		nil,
	)
	require.NoError(t, err)

	return &requestTestEnv{conn: conn, svc: svc, notifier: notifier}
}

func (e *requestTestEnv) mustCreateProduct(t *testing.T, basePriceCents int, tiers []models.PriceTier) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		SKU:            fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:           "Impact Driver",
		Slug:           fmt.Sprintf("impact-driver-%s", uuid.NewString()),
		BasePriceCents: basePriceCents,
		IsActive:       true,
	}
	require.NoError(t, e.conn.Create(product).Error)
	for i := range tiers {
		tiers[i].ID = uuid.New()
		tiers[i].ProductID = product.ID
		require.NoError(t, e.conn.Create(&tiers[i]).Error)
	}
	product.Tiers = tiers
	return product
}

func (e *requestTestEnv) mustCreateRequest(t *testing.T, product *models.Product, qty int) *RequestDTO {
	t.Helper()
	dto, err := e.svc.Create(context.Background(), CreateRequestInput{
		Customer: CustomerInput{
			Name:  "Dana Builder",
			Email: "dana@example.com",
		},
		Lines: []LineInput{{ProductID: product.ID, Qty: qty}},
	})
	require.NoError(t, err)
	return dto
}

func (e *requestTestEnv) outboxEvents(t *testing.T) []models.OutboxEvent {
	t.Helper()
	var events []models.OutboxEvent
	require.NoError(t, e.conn.Order("created_at").Find(&events).Error)
	return events
}
