package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestUnresolvedSkipsRetriedAndUnsafeSteps(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewStepRepository(conn)
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	stuck := uuid.New()
	repaired := uuid.New()
	exhausted := uuid.New()
	entries := []models.CheckoutStep{
		{OrderID: stuck, OrderNumber: "ORD-1", Step: enums.CheckoutStepOrderCompleted, Outcome: enums.StepOutcomeFailed, Detail: "db down"},
		{OrderID: stuck, OrderNumber: "ORD-1", Step: enums.CheckoutStepInvoiceDelivered, Outcome: enums.StepOutcomeFailed, Detail: "smtp"},
		{OrderID: repaired, OrderNumber: "ORD-2", Step: enums.CheckoutStepAnalyticsIncremented, Outcome: enums.StepOutcomeFailed},
		{OrderID: repaired, OrderNumber: "ORD-2", Step: enums.CheckoutStepAnalyticsIncremented, Outcome: enums.StepOutcomeSucceeded, Attempt: 2},
		{OrderID: exhausted, OrderNumber: "ORD-3", Step: enums.CheckoutStepOrderCompleted, Outcome: enums.StepOutcomeFailed, Attempt: 5},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	rows, err := repo.Unresolved(ctx, []enums.CheckoutStep{enums.CheckoutStepOrderCompleted, enums.CheckoutStepAnalyticsIncremented}, since, 5, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stuck, rows[0].OrderID)
	assert.Equal(t, enums.CheckoutStepOrderCompleted, rows[0].Step)

	rows, err = repo.Unresolved(ctx, []enums.CheckoutStep{enums.CheckoutStepOrderCompleted}, time.Now().Add(time.Hour), 5, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	history, err := repo.ListByOrder(ctx, repaired)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
