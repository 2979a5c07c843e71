package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type trackerStub struct {
	calls []enums.MetricType
}

func (t *trackerStub) Track(_ context.Context, _ uuid.UUID, metric enums.MetricType) error {
	t.calls = append(t.calls, metric)
	return nil
}

func newCatalog(t *testing.T) (Service, *trackerStub) {
	t.Helper()
	tracker := &trackerStub{}
	svc, err := NewService(NewRepository(dbtest.Open(t)), tracker)
	require.NoError(t, err)
	return svc, tracker
}

func hoodie() ProductInput {
	return ProductInput{
		Name:        " Campus Hoodie ",
		Price:       decimal.RequireFromString("499"),
		Colors:      []string{"Black", " "},
		Sizes:       []string{"M", "L"},
		LogoOptions: []string{"Embroidered", "Custom Text"},
	}
}

func TestCreateAndViewProduct(t *testing.T) {
	ctx := context.Background()
	svc, tracker := newCatalog(t)

	created, err := svc.Create(ctx, hoodie())
	require.NoError(t, err)
	assert.Equal(t, "Campus Hoodie", created.Name)
	assert.Equal(t, []string{"Black"}, created.Colors)
	assert.True(t, created.IsActive)
	assert.True(t, created.Purchasable)

	viewed, err := svc.ViewProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, viewed.Price.Equal(decimal.NewFromInt(499)))
	assert.Equal(t, []enums.MetricType{enums.MetricTypeViews}, tracker.calls)
}

func TestDeactivateHidesFromStorefront(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t)

	created, err := svc.Create(ctx, hoodie())
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, created.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	_, err = svc.ViewProduct(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.Deactivate(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateAndValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t)

	_, err := svc.Create(ctx, ProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := svc.Create(ctx, hoodie())
	require.NoError(t, err)

	input := hoodie()
	input.Price = decimal.RequireFromString("549.50")
	input.Sizes = nil
	updated, err := svc.Update(ctx, created.ID, input)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("549.5")))
	assert.False(t, updated.Purchasable, "empty size set makes the product unpurchasable")

	resolved, err := svc.Resolve(ctx, []uuid.UUID{created.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestExportProducts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t)
	_, err := svc.Create(ctx, hoodie())
	require.NoError(t, err)

	table, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Logo Options", table.Header[6])
	assert.Equal(t, "499.00", table.Rows[0][3])
	assert.Equal(t, "Embroidered;Custom Text", table.Rows[0][6])
	assert.Equal(t, "true", table.Rows[0][8])
}
