package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/catalog/products"
)

type mockRepo struct {
	orders map[int64]*Order
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: make(map[int64]*Order), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range m.orders {
		if req.Status != nil && string(o.Status) != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	copied.Items = append([]OrderItem(nil), o.Items...)
	return &copied, nil
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	for _, o := range m.orders {
		if o.Number == number {
			return m.Get(ctx, o.ID)
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, order Order) (int64, error) {
	id := m.nextID
	m.nextID++
	order.ID = id
	m.orders[id] = &order
	return id, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *mockRepo) ReplaceItems(ctx context.Context, orderID int64, items []OrderItem, total float64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Items = items
	o.Total = total
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrStatusConflict
	}
	o.Status = to
	return nil
}

type mockCatalog struct {
	products map[int64]*products.Product
	stock    map[int64]int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{products: make(map[int64]*products.Product), stock: make(map[int64]int)}
}

func (m *mockCatalog) add(id int64, name string, price float64, stock int, active bool) {
	m.products[id] = &products.Product{ID: id, Name: name, Price: price, Stock: stock, IsActive: active}
	m.stock[id] = stock
}

func (m *mockCatalog) Get(ctx context.Context, id int64) (*products.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	copied := *p
	copied.Stock = m.stock[id]
	return &copied, nil
}

func (m *mockCatalog) Reserve(ctx context.Context, id int64, quantity int) error {
	if m.stock[id] < quantity {
		return products.ErrInsufficientStock
	}
	m.stock[id] -= quantity
	return nil
}

func (m *mockCatalog) Release(ctx context.Context, id int64, quantity int) error {
	m.stock[id] += quantity
	return nil
}

func newTestService() (*Service, *mockRepo, *mockCatalog) {
	repo := newMockRepo()
	catalog := newMockCatalog()
	return NewService(repo, catalog, nil), repo, catalog
}

func TestCreateSnapshotsPrices(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa lino", 45.50, 10, true)
	catalog.add(2, "Pantalón drill", 60.00, 5, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 7,
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "Camisa lino", order.Items[0].ProductName)
	assert.InDelta(t, 151.0, order.Total, 0.001)
	assert.NotEmpty(t, order.Number)

	// Creating a pending order must not touch stock.
	assert.Equal(t, 10, catalog.stock[1])
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Descontinuado", 10, 5, false)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	}, nil)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 99, Quantity: 1}},
	}, nil)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestConfirmReservesStock(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 4}},
	}, nil)
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "confirmado"}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, 6, catalog.stock[1])
}

func TestConfirmInsufficientStockRollsBack(t *testing.T) {
	svc, repo, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)
	catalog.add(2, "Pantalón", 30, 1, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 3},
		},
	}, nil)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "confirmado"}, 1)
	assert.ErrorIs(t, err, products.ErrInsufficientStock)

	// First reservation rolled back, order back to pending.
	assert.Equal(t, 10, catalog.stock[1])
	assert.Equal(t, StatusPending, repo.orders[order.ID].Status)
}

func TestVoidReleasesReservedStock(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 4}},
	}, nil)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "confirmado"}, 1)
	require.NoError(t, err)
	require.Equal(t, 6, catalog.stock[1])

	voided, err := svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "anulado"}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusVoided, voided.Status)
	assert.Equal(t, 10, catalog.stock[1])
}

func TestVoidPendingDoesNotTouchStock(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 4}},
	}, nil)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "anulado"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, catalog.stock[1])
}

func TestChangeStatusRejectsInvalidTransitions(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	}, nil)
	require.NoError(t, err)

	// A pending order cannot jump straight to delivered.
	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "entregado"}, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "algo-raro"}, 1)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestFullPipeline(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 2}},
	}, nil)
	require.NoError(t, err)

	for _, next := range []string{"confirmado", "en_produccion", "terminado", "entregado"} {
		order, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: next}, 1)
		require.NoError(t, err, "transition to %s", next)
	}
	assert.Equal(t, StatusDelivered, order.Status)

	// Terminal states reject further changes.
	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "anulado"}, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog.add(1, "Camisa", 20, 10, true)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		ClientID: 1,
		Items:    []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	}, nil)
	require.NoError(t, err)

	notes := "entrega en tienda"
	_, err = svc.Update(context.Background(), order.ID, UpdateOrderRequest{Notes: &notes}, 1)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), order.ID, ChangeStatusRequest{Status: "confirmado"}, 1)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, UpdateOrderRequest{Notes: &notes}, 1)
	assert.ErrorIs(t, err, ErrNotEditable)
}
