package application_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
	cartmem "github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	catalogmem "github.com/dmehra2102/storefront/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/storefront/pkg/logging"
)

type fixture struct {
	svc      *application.Service
	products *catalogmem.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	products := catalogmem.NewRepository()
	return fixture{
		svc:      application.NewService(logging.Discard(), cartmem.NewRepository(), products),
		products: products,
	}
}

func (f fixture) product(t *testing.T, id string, stock int) {
	t.Helper()
	_, err := f.products.Create(context.Background(), catalog.Product{ID: id, Code: id, Stock: stock, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.True(t, c.Empty())

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestAddItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", 5)
	f.product(t, "b", 1)
	c, err := f.svc.Create(ctx)
	require.NoError(t, err)

	for _, pid := range []string{"a", "b", "a"} {
		got, err := f.svc.AddItem(ctx, c.ID, pid)
		require.NoError(t, err)
		require.NotNil(t, got)
	}

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}, got.Items)

	p, err := f.products.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "adding to a cart does not reserve stock")
}

func TestAddItemOutOfStockReturnsNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "empty", 0)
	c, err := f.svc.Create(ctx)
	require.NoError(t, err)

	got, err := f.svc.AddItem(ctx, c.ID, "empty")
	require.NoError(t, err)
	assert.Nil(t, got)

	after, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, after.Empty())
}

func TestAddItemNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", 1)
	c, err := f.svc.Create(ctx)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, "missing", "a")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, c.ID, "missing")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", 3)
	f.product(t, "b", 3)
	c, err := f.svc.Create(ctx)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, c.ID, "a")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, c.ID, "a")
	require.NoError(t, err)

	before, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	_, err = f.svc.RemoveItem(ctx, c.ID, "b")
	assert.ErrorIs(t, err, domain.ErrNotInCart)
	after, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)

	emptied, err := f.svc.RemoveItem(ctx, c.ID, "a")
	require.NoError(t, err, "removing the whole line, not one unit")
	assert.True(t, emptied.Empty())

	_, err = f.svc.RemoveItem(ctx, "missing", "a")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}
