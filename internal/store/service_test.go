package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/catalog/categories"
	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/clients"
	"github.com/telaris-erp/telaris/internal/orders"
)

type fakeCatalog struct {
	products map[int64]*products.Product
}

func (f *fakeCatalog) ListPublic(ctx context.Context, categoryID *int64, search *string, page, perPage int) ([]products.Product, int, error) {
	var out []products.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeCatalog) Get(ctx context.Context, id int64) (*products.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

type fakeCategories struct{}

func (fakeCategories) ListActive(ctx context.Context) ([]categories.Category, error) {
	return []categories.Category{{ID: 1, Name: "Camisas", IsActive: true}}, nil
}

type fakeClients struct {
	created []string
}

func (f *fakeClients) FindOrCreateByEmail(ctx context.Context, email, name string) (*clients.Client, error) {
	f.created = append(f.created, email)
	return &clients.Client{ID: 42, Name: name, Email: &email, IsActive: true}, nil
}

type fakeOrders struct {
	placed []orders.CreateOrderRequest
	fail   error
}

func (f *fakeOrders) Create(ctx context.Context, req orders.CreateOrderRequest, createdBy *int64) (*orders.Order, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.placed = append(f.placed, req)
	var total float64
	for _, it := range req.Items {
		total += float64(it.Quantity) * 10
	}
	return &orders.Order{ID: 1, Number: "PED-TEST0001", ClientID: req.ClientID, Status: orders.StatusPending, Total: total}, nil
}

func newStoreFixture(t *testing.T) (*Service, *fakeCatalog, *fakeClients, *fakeOrders) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	catalog := &fakeCatalog{products: map[int64]*products.Product{
		1: {ID: 1, CategoryID: 1, Name: "Camisa lino", Price: 45.5, IsActive: true},
		2: {ID: 2, CategoryID: 1, Name: "Descontinuada", Price: 30, IsActive: false},
	}}
	clientDir := &fakeClients{}
	orderPlacer := &fakeOrders{}
	svc := NewService(catalog, fakeCategories{}, clientDir, orderPlacer, NewCart(client, time.Hour), nil)
	return svc, catalog, clientDir, orderPlacer
}

func TestAddToCartRejectsInactiveProduct(t *testing.T) {
	svc, _, _, _ := newStoreFixture(t)

	_, err := svc.AddToCart(context.Background(), "sess-1", AddToCartRequest{ProductID: 2, Quantity: 1})
	assert.ErrorIs(t, err, products.ErrNotFound)

	view, err := svc.AddToCart(context.Background(), "sess-1", AddToCartRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.InDelta(t, 91.0, view.Total, 0.001)
}

func TestViewCartMarksUnavailableLines(t *testing.T) {
	svc, catalog, _, _ := newStoreFixture(t)

	_, err := svc.AddToCart(context.Background(), "sess-1", AddToCartRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	// Product deactivated after it was added.
	catalog.products[1].IsActive = false

	view, err := svc.ViewCart(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.False(t, view.Items[0].Available)
	assert.Zero(t, view.Total)
}

func TestCheckoutCreatesPendingOrderAndClearsCart(t *testing.T) {
	svc, _, clientDir, orderPlacer := newStoreFixture(t)

	_, err := svc.AddToCart(context.Background(), "sess-1", AddToCartRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)

	resp, err := svc.Checkout(context.Background(), "sess-1", "", CheckoutRequest{
		Name:  "Ana Quispe",
		Email: "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, resp.Status)
	assert.Equal(t, "PED-TEST0001", resp.OrderNumber)
	assert.Equal(t, []string{"ana@example.com"}, clientDir.created)
	require.Len(t, orderPlacer.placed, 1)
	assert.Equal(t, int64(42), orderPlacer.placed[0].ClientID)

	view, err := svc.ViewCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc, _, _, _ := newStoreFixture(t)

	_, err := svc.Checkout(context.Background(), "sess-1", "", CheckoutRequest{
		Name:  "Ana Quispe",
		Email: "ana@example.com",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	svc, _, _, orderPlacer := newStoreFixture(t)
	orderPlacer.fail = products.ErrInsufficientStock

	_, err := svc.AddToCart(context.Background(), "sess-1", AddToCartRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), "sess-1", "", CheckoutRequest{
		Name:  "Ana Quispe",
		Email: "ana@example.com",
	})
	assert.ErrorIs(t, err, products.ErrInsufficientStock)

	view, err := svc.ViewCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}
