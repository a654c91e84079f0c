package lifecycle

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
)

const lifecycleTestSchema = `
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  is_admin BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  deleted_at DATETIME,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE brands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  logo_url TEXT,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
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

func setupLifecycleTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(lifecycleTestSchema).Error)

	events := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(db.NewWithConn(conn), events, nil)
	require.NoError(t, err)
	return conn, svc
}

func mustCreateProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		SKU:            fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:           "Cordless Drill",
		Slug:           fmt.Sprintf("cordless-drill-%s", uuid.NewString()),
		BasePriceCents: 15900,
		IsActive:       true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func mustCreateBrand(t *testing.T, conn *gorm.DB) *models.Brand {
	t.Helper()
	brand := &models.Brand{
		ID:       uuid.New(),
		Name:     "Acme Tools",
		Slug:     fmt.Sprintf("acme-tools-%s", uuid.NewString()),
		IsActive: true,
	}
	require.NoError(t, conn.Create(brand).Error)
	return brand
}

func countOutboxEvents(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	return count
}
