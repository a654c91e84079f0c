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

func TestBulkApplyEmptyList(t *testing.T) {
	_, svc := setupLifecycleTest(t)

	_, err := svc.BulkApply(context.Background(), enums.EntityKindProduct, nil, OpSoftDelete())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBulkApplyAllSucceed(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	first := mustCreateProduct(t, conn)
	second := mustCreateProduct(t, conn)

	result, err := svc.BulkApply(context.Background(), enums.EntityKindProduct,
		[]uuid.UUID{first.ID, second.ID}, OpSoftDelete())
	require.NoError(t, err)
	assert.True(t, result.AllSucceeded())
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, result.Succeeded)

	var active int64
	require.NoError(t, conn.Model(&models.Product{}).Where("is_active = ?", true).Count(&active).Error)
	assert.Zero(t, active)
}

func TestBulkApplyPartialFailure(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)
	missing := uuid.New()

	result, err := svc.BulkApply(context.Background(), enums.EntityKindProduct,
		[]uuid.UUID{product.ID, missing}, OpSoftDelete())
	require.NoError(t, err, "per-id failures must not fail the batch")
	assert.False(t, result.AllSucceeded())
	assert.Equal(t, []uuid.UUID{product.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].ID)
	assert.NotEmpty(t, result.Failed[0].Reason)

	// The valid id was still applied.
	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestBulkApplyRestore(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	first := mustCreateProduct(t, conn)
	second := mustCreateProduct(t, conn)
	ids := []uuid.UUID{first.ID, second.ID}

	_, err := svc.BulkApply(context.Background(), enums.EntityKindProduct, ids, OpSoftDelete())
	require.NoError(t, err)

	result, err := svc.BulkApply(context.Background(), enums.EntityKindProduct, ids, OpRestore())
	require.NoError(t, err)
	assert.True(t, result.AllSucceeded())

	var active int64
	require.NoError(t, conn.Model(&models.Product{}).Where("is_active = ?", true).Count(&active).Error)
	assert.Equal(t, int64(2), active)
}

func TestBulkApplySetActive(t *testing.T) {
	conn, svc := setupLifecycleTest(t)
	product := mustCreateProduct(t, conn)

	result, err := svc.BulkApply(context.Background(), enums.EntityKindProduct,
		[]uuid.UUID{product.ID}, OpSetActive(false))
	require.NoError(t, err)
	assert.True(t, result.AllSucceeded())

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Nil(t, reloaded.DeletedAt)
}

func TestBulkApplyUnknownKind(t *testing.T) {
	_, svc := setupLifecycleTest(t)

	_, err := svc.BulkApply(context.Background(), enums.EntityKind("warehouse"),
		[]uuid.UUID{uuid.New()}, OpSoftDelete())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
