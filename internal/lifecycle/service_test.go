package lifecycle

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

func TestSoftDeleteArchivesEntity(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	require.NoError(t, svc.SoftDelete(context.Background(), enums.EntityKindProduct, product.ID))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
	require.NotNil(t, reloaded.DeletedAt)

	var event models.OutboxEvent
	require.NoError(t, conn.First(&event).Error)
	assert.Equal(t, enums.EventEntityArchived, event.EventType)
	assert.Equal(t, enums.AggregateProduct, event.AggregateType)
	assert.Equal(t, product.ID, event.AggregateID)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	require.NoError(t, svc.SoftDelete(context.Background(), enums.EntityKindProduct, product.ID))
	require.NoError(t, svc.SoftDelete(context.Background(), enums.EntityKindProduct, product.ID))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.NotNil(t, reloaded.DeletedAt)
}

func TestRestoreClearsTombstone(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	require.NoError(t, svc.SoftDelete(context.Background(), enums.EntityKindProduct, product.ID))
	require.NoError(t, svc.Restore(context.Background(), enums.EntityKindProduct, product.ID))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.True(t, reloaded.IsActive)
	assert.Nil(t, reloaded.DeletedAt)

	var events []models.OutboxEvent
	require.NoError(t, conn.Order("created_at").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, enums.EventEntityRestored, events[1].EventType)
}

func TestRestoreNeverCreatedEntity(t *testing.T) {
	_, svc := setupLifecycleTest(t)

	err := svc.Restore(context.Background(), enums.EntityKindProduct, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSetActiveLeavesTombstoneAlone(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	require.NoError(t, svc.SetActive(context.Background(), enums.EntityKindProduct, product.ID, false))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Nil(t, reloaded.DeletedAt)
}

func TestSetActiveEmitsVisibilityEvents(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	require.NoError(t, svc.SetActive(context.Background(), enums.EntityKindProduct, product.ID, false))
	require.NoError(t, svc.SetActive(context.Background(), enums.EntityKindProduct, product.ID, true))

	var events []models.OutboxEvent
	require.NoError(t, conn.Order("created_at").Find(&events).Error)
	require.Len(t, events, 2)
	// Visibility toggles never masquerade as archive/restore in the stream.
	assert.Equal(t, enums.EventEntityDeactivated, events[0].EventType)
	assert.Equal(t, enums.EventEntityActivated, events[1].EventType)
}

func TestSoftDeleteDoesNotCascade(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	brand := mustCreateBrand(t, conn)
	product := mustCreateProduct(t, conn)
	require.NoError(t, conn.Model(product).Update("brand_id", brand.ID).Error)

	require.NoError(t, svc.SoftDelete(context.Background(), enums.EntityKindBrand, brand.ID))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.True(t, reloaded.IsActive, "archiving a brand must not touch its products")
	assert.Nil(t, reloaded.DeletedAt)
}

func TestLifecycleRejectsUnknownKind(t *testing.T) {
	_, svc := setupLifecycleTest(t)

	err := svc.SoftDelete(context.Background(), enums.EntityKind("warehouse"), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestLifecycleRejectsNilID(t *testing.T) {
	_, svc := setupLifecycleTest(t)

	err := svc.SoftDelete(context.Background(), enums.EntityKindProduct, uuid.Nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
