package requests

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogp-platform/proforma-backend/internal/lifecycle"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/db/models"
	"github.com/ogp-platform/proforma-backend/pkg/enums"
	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
	"github.com/ogp-platform/proforma-backend/pkg/outbox"
)

func TestCreateRequestSnapshotsLinesAndTotals(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 2500, []models.PriceTier{
		{MinQty: 1, MaxQty: 9, UnitPriceCents: 2500},
		{MinQty: 10, MaxQty: 49, UnitPriceCents: 2200},
		{MinQty: 50, MaxQty: 0, UnitPriceCents: 2000},
	})

	dto, err := env.svc.Create(context.Background(), CreateRequestInput{
		Customer: CustomerInput{Name: "Dana Builder", Email: "dana@example.com", Company: "Builder Co"},
		Lines:    []LineInput{{ProductID: product.ID, Qty: 12}},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.RequestStatusPending, dto.Status)
	assert.NotEmpty(t, dto.RequestNumber)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, product.Name, dto.Lines[0].Name)
	assert.Equal(t, 2200, dto.Lines[0].UnitPriceCents)
	assert.Equal(t, 26400, dto.Lines[0].LineTotalCents)
	assert.Equal(t, 26400, dto.TotalAmountCents)

	events := env.outboxEvents(t)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventRequestCreated, events[0].EventType)
	assert.Equal(t, dto.ID, events[0].AggregateID)
}

func TestCreateRequestNumbersAreSequential(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)

	first := env.mustCreateRequest(t, product, 1)
	second := env.mustCreateRequest(t, product, 2)

	assert.NotEqual(t, first.RequestNumber, second.RequestNumber)
	assert.Less(t, first.RequestNumber, second.RequestNumber)
}

func TestCreateRequestValidation(t *testing.T) {
	env := setupRequestTest(t)

	cases := []struct {
		name  string
		input CreateRequestInput
	}{
		{
			name: "missing customer name",
			input: CreateRequestInput{
				Customer: CustomerInput{Email: "dana@example.com"},
				Lines:    []LineInput{{ProductID: uuid.New(), Qty: 1}},
			},
		},
		{
			name: "bad email",
			input: CreateRequestInput{
				Customer: CustomerInput{Name: "Dana", Email: "not-an-email"},
				Lines:    []LineInput{{ProductID: uuid.New(), Qty: 1}},
			},
		},
		{
			name: "no lines",
			input: CreateRequestInput{
				Customer: CustomerInput{Name: "Dana", Email: "dana@example.com"},
			},
		},
		{
			name: "zero quantity",
			input: CreateRequestInput{
				Customer: CustomerInput{Name: "Dana", Email: "dana@example.com"},
				Lines:    []LineInput{{ProductID: uuid.New(), Qty: 0}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestCreateRequestRejectsUnavailableProduct(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	require.NoError(t, env.conn.Model(product).Update("is_active", false).Error)

	_, err := env.svc.Create(context.Background(), CreateRequestInput{
		Customer: CustomerInput{Name: "Dana", Email: "dana@example.com"},
		Lines:    []LineInput{{ProductID: product.ID, Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// Nothing committed: no request row, no burned number visible.
	var count int64
	require.NoError(t, env.conn.Model(&models.Request{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRequestUnknownProduct(t *testing.T) {
	env := setupRequestTest(t)

	_, err := env.svc.Create(context.Background(), CreateRequestInput{
		Customer: CustomerInput{Name: "Dana", Email: "dana@example.com"},
		Lines:    []LineInput{{ProductID: uuid.New(), Qty: 1}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestTransitionApprovesPendingRequest(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	dto, err := env.svc.Transition(context.Background(), created.ID, enums.RequestStatusApproved, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.RequestStatusApproved, dto.Status)

	events := env.outboxEvents(t)
	require.Len(t, events, 2)
	assert.Equal(t, enums.EventRequestStatusChanged, events[1].EventType)

	require.Len(t, env.notifier.calls, 1)
	assert.Equal(t, created.ID, env.notifier.calls[0].requestID)
	assert.Equal(t, enums.RequestStatusPending, env.notifier.calls[0].prior)

	var reloaded models.Request
	require.NoError(t, env.conn.First(&reloaded, "id = ?", created.ID).Error)
	assert.NotNil(t, reloaded.NotifiedAt)
}

func TestTransitionIllegalMove(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	// pending -> processing skips approval.
	_, err := env.svc.Transition(context.Background(), created.ID, enums.RequestStatusProcessing, "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestTransitionDuplicateApproval(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	_, err := env.svc.Transition(context.Background(), created.ID, enums.RequestStatusApproved, "admin")
	require.NoError(t, err)

	_, err = env.svc.Transition(context.Background(), created.ID, enums.RequestStatusApproved, "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestTransitionTerminalStates(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)

	for _, terminal := range []enums.RequestStatus{enums.RequestStatusRejected, enums.RequestStatusCompleted} {
		created := env.mustCreateRequest(t, product, 1)
		path := []enums.RequestStatus{terminal}
		if terminal == enums.RequestStatusCompleted {
			path = []enums.RequestStatus{enums.RequestStatusApproved, enums.RequestStatusCompleted}
		}
		for _, step := range path {
			_, err := env.svc.Transition(context.Background(), created.ID, step, "admin")
			require.NoError(t, err)
		}

		for _, target := range []enums.RequestStatus{
			enums.RequestStatusPending,
			enums.RequestStatusApproved,
			enums.RequestStatusProcessing,
		} {
			_, err := env.svc.Transition(context.Background(), created.ID, target, "admin")
			require.Error(t, err, "from %s to %s", terminal, target)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
		}
	}
}

func TestTransitionLostRaceBecomesConflict(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	svc := env.svc.(*service)

	// Simulate another admin rejecting between the legality check and the
	// compare-and-swap update.
	request, err := svc.loadRequest(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, enums.RequestStatusPending, request.Status)

	require.NoError(t, env.conn.Model(&models.Request{}).
		Where("id = ?", created.ID).
		Update("status", enums.RequestStatusRejected).Error)

	affected, err := svc.repo.UpdateStatusWhere(context.Background(), created.ID, enums.RequestStatusPending, enums.RequestStatusApproved)
	require.NoError(t, err)
	assert.Zero(t, affected)

	err = svc.explainLostRace(context.Background(), svc.repo, created.ID, enums.RequestStatusApproved)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestTransitionUnknownRequest(t *testing.T) {
	env := setupRequestTest(t)

	_, err := env.svc.Transition(context.Background(), uuid.New(), enums.RequestStatusApproved, "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestTransitionNotifierFailureDoesNotRollBack(t *testing.T) {
	env := setupRequestTest(t)
	env.notifier.fail = errors.New("smtp unreachable")
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	dto, err := env.svc.Transition(context.Background(), created.ID, enums.RequestStatusApproved, "admin")
	require.NoError(t, err, "notifier failure must not fail the transition")
	assert.Equal(t, enums.RequestStatusApproved, dto.Status)

	var reloaded models.Request
	require.NoError(t, env.conn.First(&reloaded, "id = ?", created.ID).Error)
	assert.Equal(t, enums.RequestStatusApproved, reloaded.Status)
	assert.Nil(t, reloaded.NotifiedAt, "notified_at only set on delivery success")
}

func TestTransitionProcessingDoesNotNotify(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	_, err := env.svc.Transition(context.Background(), created.ID, enums.RequestStatusApproved, "admin")
	require.NoError(t, err)
	require.Len(t, env.notifier.calls, 1)

	_, err = env.svc.Transition(context.Background(), created.ID, enums.RequestStatusProcessing, "admin")
	require.NoError(t, err)
	assert.Len(t, env.notifier.calls, 1, "fulfillment moves send no customer notice")
}

func TestBulkTransitionPartialFailures(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	pending := env.mustCreateRequest(t, product, 1)
	alreadyApproved := env.mustCreateRequest(t, product, 1)
	missing := uuid.New()

	_, err := env.svc.Transition(context.Background(), alreadyApproved.ID, enums.RequestStatusApproved, "admin")
	require.NoError(t, err)

	result, err := env.svc.BulkTransition(context.Background(),
		[]uuid.UUID{pending.ID, alreadyApproved.ID, missing},
		enums.RequestStatusApproved, "admin")
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{pending.ID}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.False(t, result.AllSucceeded())
}

func TestBulkTransitionEmptyList(t *testing.T) {
	env := setupRequestTest(t)

	_, err := env.svc.BulkTransition(context.Background(), nil, enums.RequestStatusApproved, "admin")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestGetSurvivesProductArchival(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 2500, []models.PriceTier{
		{MinQty: 10, MaxQty: 0, UnitPriceCents: 2200},
	})
	created := env.mustCreateRequest(t, product, 12)

	archiver, err := lifecycle.NewService(db.NewWithConn(env.conn), outbox.NewService(outbox.NewRepository(env.conn), nil), nil)
	require.NoError(t, err)
	require.NoError(t, archiver.SoftDelete(context.Background(), enums.EntityKindProduct, product.ID))

	var archived models.Product
	require.NoError(t, env.conn.First(&archived, "id = ?", product.ID).Error)
	require.NotNil(t, archived.DeletedAt)

	// Lines are snapshots; archiving the product rewrites nothing in history.
	dto, err := env.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, product.Name, dto.Lines[0].Name)
	assert.Equal(t, 2200, dto.Lines[0].UnitPriceCents)
	assert.Equal(t, 26400, dto.Lines[0].LineTotalCents)
	assert.Equal(t, 26400, dto.TotalAmountCents)
}

func TestNotifyStampSurvivesCallerHangup(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 1)

	svc := env.svc.(*service)
	request, err := svc.loadRequest(context.Background(), created.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A caller gone right after commit must not cost us the notice or the
	// notified_at stamp.
	svc.notifyBestEffort(ctx, request, enums.RequestStatusPending)

	require.Len(t, env.notifier.calls, 1)
	require.NotNil(t, request.NotifiedAt)

	var reloaded models.Request
	require.NoError(t, env.conn.First(&reloaded, "id = ?", created.ID).Error)
	assert.NotNil(t, reloaded.NotifiedAt)
}

func TestGetByNumber(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	created := env.mustCreateRequest(t, product, 3)

	dto, err := env.svc.GetByNumber(context.Background(), created.RequestNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, dto.ID)
	require.Len(t, dto.Lines, 1)

	_, err = env.svc.GetByNumber(context.Background(), "OGP-99999")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	env := setupRequestTest(t)
	product := env.mustCreateProduct(t, 1000, nil)
	first := env.mustCreateRequest(t, product, 1)
	_ = env.mustCreateRequest(t, product, 1)

	_, err := env.svc.Transition(context.Background(), first.ID, enums.RequestStatusApproved, "admin")
	require.NoError(t, err)

	approved := enums.RequestStatusApproved
	rows, next, err := env.svc.List(context.Background(), ListFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Empty(t, next)
}
