package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	cartmem "github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	catalogmem "github.com/dmehra2102/storefront/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/storefront/internal/checkout/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	ticketapp "github.com/dmehra2102/storefront/internal/ticket/application"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
	ticketmem "github.com/dmehra2102/storefront/internal/ticket/infrastructure/memory"
	"github.com/dmehra2102/storefront/pkg/logging"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PurchaseConfirmed(ctx context.Context, t ticket.Ticket) error {
	return m.Called(t.CartID).Error(0)
}

type countingObserver struct {
	mu       sync.Mutex
	attempts map[string]int
	lines    map[string]int
}

func (o *countingObserver) Attempt(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts[result]++
}

func (o *countingObserver) Line(status, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines[status+"/"+reason]++
}

// failingInventory fails every decrement after the first n.
type failingInventory struct {
	application.Inventory
	n     int
	calls int
}

func (f *failingInventory) TryDecrementStock(ctx context.Context, id string, qty int) (catalog.Product, bool, error) {
	f.calls++
	if f.calls > f.n {
		return catalog.Product{}, false, errors.New("connection reset")
	}
	return f.Inventory.TryDecrementStock(ctx, id, qty)
}

type fixture struct {
	svc      *application.Service
	products *catalogmem.Repository
	carts    *cartapp.Service
	tickets  *ticketapp.Service
	notifier *mockNotifier
	observer *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := catalogmem.NewRepository()
	f := &fixture{
		products: products,
		carts:    cartapp.NewService(logging.Discard(), cartmem.NewRepository(), products),
		tickets:  ticketapp.NewService(logging.Discard(), ticketmem.NewRepository()),
		notifier: &mockNotifier{},
		observer: &countingObserver{attempts: map[string]int{}, lines: map[string]int{}},
	}
	f.svc = application.NewService(logging.Discard(), f.carts, products, f.tickets, f.notifier, f.observer)
	return f
}

func (f *fixture) product(t *testing.T, id, price string, stock int) {
	t.Helper()
	_, err := f.products.Create(context.Background(), catalog.Product{
		ID: id, Title: "Product " + id, Code: "code-" + id, Stock: stock, Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// cart creates a cart holding qty units of each product, in argument order.
func (f *fixture) cart(t *testing.T, lines ...any) string {
	t.Helper()
	ctx := context.Background()
	c, err := f.carts.Create(ctx)
	require.NoError(t, err)
	for i := 0; i < len(lines); i += 2 {
		id, qty := lines[i].(string), lines[i+1].(int)
		for j := 0; j < qty; j++ {
			got, err := f.carts.AddItem(ctx, c.ID, id)
			require.NoError(t, err)
			require.NotNil(t, got)
		}
	}
	return c.ID
}

func TestCheckoutSingleLineSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "4.25", 5)
	cartID := f.cart(t, "a", 3)
	f.notifier.On("PurchaseConfirmed", cartID).Return(nil).Once()

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)

	assert.True(t, decimal.RequireFromString("12.75").Equal(res.Ticket.Amount))
	assert.Equal(t, "buyer-1", res.Ticket.Purchaser)
	assert.Equal(t, cartID, res.Ticket.CartID)
	require.Len(t, res.Ticket.Lines, 1)
	assert.Equal(t, 3, res.Ticket.Lines[0].Quantity)
	assert.Equal(t, []domain.LineOutcome{{ProductID: "a", Quantity: 3, Status: domain.Fulfilled}}, res.Lines)

	c, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Equal(t, 2, f.stock(t, "a"))

	stored, err := f.tickets.ListByCart(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res.Ticket.Code, stored[0].Code)

	assert.Equal(t, 1, f.observer.attempts["ticket"])
	f.notifier.AssertExpectations(t)
}

func TestCheckoutSingleLineShortage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "1.00", 3)
	cartID := f.cart(t, "a", 3)
	_, err := f.products.Update(ctx, "a", catalog.ProductPatch{Stock: intPtr(2)})
	require.NoError(t, err)

	before, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	assert.Nil(t, res.Ticket)
	assert.Equal(t, []domain.LineOutcome{{
		ProductID: "a", Quantity: 3, Status: domain.Unfulfilled, Reason: domain.ReasonInsufficientStock,
	}}, res.Lines)

	after, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, 2, f.stock(t, "a"))

	tickets, err := f.tickets.ListByCart(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Equal(t, 1, f.observer.attempts["none"])
	f.notifier.AssertNotCalled(t, "PurchaseConfirmed", mock.Anything)
}

func TestCheckoutMixedFulfillment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "10.00", 4)
	f.product(t, "b", "3.00", 2)
	cartID := f.cart(t, "a", 2, "b", 2)
	_, err := f.products.Update(ctx, "b", catalog.ProductPatch{Stock: intPtr(1)})
	require.NoError(t, err)
	f.notifier.On("PurchaseConfirmed", cartID).Return(nil).Once()

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	assert.True(t, decimal.RequireFromString("20.00").Equal(res.Ticket.Amount))
	assert.Len(t, res.Fulfilled(), 1)
	require.Len(t, res.Unfulfilled(), 1)
	assert.Equal(t, "b", res.Unfulfilled()[0].ProductID)
	assert.Equal(t, "partial", res.Summary())

	c, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "b", c.Items[0].ProductID)
	assert.Equal(t, 2, c.Items[0].Quantity)

	assert.Equal(t, 2, f.stock(t, "a"))
	assert.Equal(t, 1, f.stock(t, "b"))
	assert.Equal(t, 1, f.observer.lines["fulfilled/"])
	assert.Equal(t, 1, f.observer.lines["unfulfilled/insufficient_stock"])
}

func TestCheckoutDeletedProductStaysInCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "1.00", 1)
	f.product(t, "gone", "1.00", 1)
	cartID := f.cart(t, "gone", 1, "a", 1)
	_, err := f.products.Delete(ctx, "gone")
	require.NoError(t, err)
	f.notifier.On("PurchaseConfirmed", cartID).Return(nil)

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, domain.LineOutcome{
		ProductID: "gone", Quantity: 1, Status: domain.Unfulfilled, Reason: domain.ReasonProductMissing,
	}, res.Lines[0])

	c, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "gone", c.Items[0].ProductID)
}

func TestCheckoutEmptyAndMissingCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cartID := f.cart(t)

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	assert.Nil(t, res.Ticket)
	assert.Empty(t, res.Lines)
	assert.Equal(t, 1, f.observer.attempts["empty"])

	_, err = f.svc.Checkout(ctx, "missing", "buyer-1")
	assert.Error(t, err)
}

func TestCheckoutRaceForLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "last", "9.99", 1)
	f.notifier.On("PurchaseConfirmed", mock.Anything).Return(nil)

	const buyers = 8
	carts := make([]string, buyers)
	for i := range carts {
		carts[i] = f.cart(t, "last", 1)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		tickets int
	)
	for _, id := range carts {
		wg.Add(1)
		go func(cartID string) {
			defer wg.Done()
			res, err := f.svc.Checkout(ctx, cartID, "buyer-"+cartID)
			assert.NoError(t, err)
			if res.Ticket != nil {
				mu.Lock()
				tickets++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, tickets)
	assert.Equal(t, 0, f.stock(t, "last"))
	assert.Equal(t, buyers-1, f.observer.attempts["none"])
}

func TestCheckoutConservesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "1.00", 10)
	f.product(t, "b", "2.00", 3)
	f.notifier.On("PurchaseConfirmed", mock.Anything).Return(nil)

	var wg sync.WaitGroup
	results := make(chan domain.Result, 6)
	for i := 0; i < 6; i++ {
		cartID := f.cart(t, "a", 2, "b", 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Checkout(ctx, cartID, "buyer")
			assert.NoError(t, err)
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	sold := map[string]int{}
	for res := range results {
		for _, l := range res.Fulfilled() {
			sold[l.ProductID] += l.Quantity
		}
	}
	assert.Equal(t, 10, f.stock(t, "a")+sold["a"])
	assert.Equal(t, 3, f.stock(t, "b")+sold["b"])
	assert.Equal(t, 3, sold["b"])
	assert.GreaterOrEqual(t, f.stock(t, "a"), 0)
}

func TestCheckoutNotifierFailureKeepsTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "5.00", 1)
	cartID := f.cart(t, "a", 1)
	f.notifier.On("PurchaseConfirmed", cartID).Return(errors.New("broker down"))

	res, err := f.svc.Checkout(ctx, cartID, "buyer-1")
	require.NoError(t, err)
	require.NotNil(t, res.Ticket)

	got, err := f.tickets.GetByCode(ctx, res.Ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, res.Ticket.ID, got.ID)
}

func TestCheckoutStorageFailureKeepsAppliedDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "a", "1.00", 5)
	f.product(t, "b", "1.00", 5)
	cartID := f.cart(t, "a", 1, "b", 1)

	inv := &failingInventory{Inventory: f.products, n: 1}
	svc := application.NewService(logging.Discard(), f.carts, inv, f.tickets, f.notifier, f.observer)

	_, err := svc.Checkout(ctx, cartID, "buyer-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Equal(t, 4, f.stock(t, "a"))
	assert.Equal(t, 5, f.stock(t, "b"))
	c, err := f.carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	f.notifier.AssertNotCalled(t, "PurchaseConfirmed", mock.Anything)
}

func intPtr(v int) *int { return &v }
