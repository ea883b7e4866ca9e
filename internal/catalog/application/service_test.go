package application_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/storefront/pkg/logging"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ProductRemoved(ctx context.Context, p domain.Product) error {
	return m.Called(p.ID).Error(0)
}

func newService(t *testing.T) (*application.Service, *mockNotifier) {
	t.Helper()
	n := &mockNotifier{}
	return application.NewService(logging.Discard(), memory.NewRepository(), n, 10), n
}

func newProduct(code string, stock int) domain.NewProduct {
	return domain.NewProduct{
		Title: "Product " + code,
		Price: decimal.RequireFromString("12.50"),
		Code:  code,
		Stock: stock,
		Owner: "seller-1",
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, newProduct("A-1", 5))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t)

	in := newProduct("A-1", -1)
	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = newProduct("A-2", 1)
	in.Price = decimal.NewFromInt(-3)
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateDuplicateCodeLeavesCatalogUnchanged(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, newProduct("DUP", 1))
	require.NoError(t, err)
	before, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)

	_, err = svc.Create(ctx, newProduct("DUP", 9))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	after, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Items, after.Items)
}

func TestListPagination(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for i := 1; i <= 13; i++ {
		_, err := svc.Create(ctx, newProduct(fmt.Sprintf("P-%02d", i), i))
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, 1, 6)
	require.NoError(t, err)
	assert.Len(t, first.Items, 6)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, "P-01", first.Items[0].Code)

	last, err := svc.List(ctx, 3, 6)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "P-13", last.Items[0].Code)

	beyond, err := svc.List(ctx, 4, 6)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.Equal(t, 3, beyond.TotalPages)

	defaults, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.Limit)
	assert.Len(t, defaults.Items, 10)
	assert.Equal(t, 2, defaults.TotalPages)
}

func TestListLargeInputs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for i := 1; i <= 13; i++ {
		_, err := svc.Create(ctx, newProduct(fmt.Sprintf("P-%02d", i), i))
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPageLimit, all.Limit)
	assert.Len(t, all.Items, 13)
	assert.Equal(t, 1, all.TotalPages)

	far, err := svc.List(ctx, 3, math.MaxInt/2+1)
	require.NoError(t, err)
	assert.Empty(t, far.Items)
	assert.Equal(t, 1, far.TotalPages)

	last, err := svc.List(ctx, math.MaxInt, 6)
	require.NoError(t, err)
	assert.Empty(t, last.Items)
	assert.Equal(t, 3, last.TotalPages)
}

func TestCreateRejectsUnstorablePrice(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p := newProduct("A", 1)
	p.Price = decimal.RequireFromString("1.005")
	_, err := svc.Create(ctx, p)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p.Price = decimal.RequireFromString("1e10")
	_, err = svc.Create(ctx, p)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, newProduct("A", 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newProduct("B", 1))
	require.NoError(t, err)

	price := decimal.RequireFromString("3.99")
	updated, err := svc.Update(ctx, a.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, a.Title, updated.Title)
	assert.Equal(t, "A", updated.Code)

	taken := "B"
	_, err = svc.Update(ctx, a.ID, domain.ProductPatch{Code: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	same := "A"
	_, err = svc.Update(ctx, a.ID, domain.ProductPatch{Code: &same})
	assert.NoError(t, err)

	fresh := "C"
	_, err = svc.Update(ctx, a.ID, domain.ProductPatch{Code: &fresh})
	require.NoError(t, err)
	_, err = svc.Create(ctx, newProduct("A", 1))
	assert.NoError(t, err, "old code is released after a code change")

	_, err = svc.Update(ctx, "missing", domain.ProductPatch{Code: &fresh})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	neg := -1
	_, err = svc.Update(ctx, a.ID, domain.ProductPatch{Stock: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteNotifiesOwner(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, newProduct("A", 1))
	require.NoError(t, err)

	n.On("ProductRemoved", p.ID).Return(errors.New("broker down"))

	deleted, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err, "notification failure does not fail the delete")
	assert.Equal(t, p.ID, deleted.ID)
	n.AssertExpectations(t)

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestTryDecrementStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, newProduct("A", 3))
	require.NoError(t, err)

	after, ok, err := svc.TryDecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, after.Stock)

	_, ok, err = svc.TryDecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock, "failed decrement makes no change")

	_, _, err = svc.TryDecrementStock(ctx, p.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = svc.TryDecrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
