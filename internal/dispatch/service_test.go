package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/orders"
)

type mockRepo struct {
	dispatches map[int64]*Dispatch
	nextID     int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{dispatches: make(map[int64]*Dispatch), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, req ListDispatchesRequest) ([]Dispatch, int, error) {
	var out []Dispatch
	for _, d := range m.dispatches {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Dispatch, error) {
	d, ok := m.dispatches[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockRepo) GetByTrackingCode(ctx context.Context, code string) (*Dispatch, error) {
	for _, d := range m.dispatches {
		if d.TrackingCode == code {
			return m.Get(ctx, d.ID)
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, dispatch Dispatch) (int64, error) {
	id := m.nextID
	m.nextID++
	dispatch.ID = id
	m.dispatches[id] = &dispatch
	return id, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if _, ok := m.dispatches[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, from, to DispatchStatus) error {
	d, ok := m.dispatches[id]
	if !ok {
		return ErrNotFound
	}
	if d.Status != from {
		return ErrStatusConflict
	}
	d.Status = to
	return nil
}

func (m *mockRepo) MarkDelivered(ctx context.Context, id, confirmedBy int64) error {
	d, ok := m.dispatches[id]
	if !ok {
		return ErrNotFound
	}
	if d.Status != StatusInTransit {
		return ErrStatusConflict
	}
	now := time.Now()
	d.Status = StatusDelivered
	d.ConfirmedBy = &confirmedBy
	d.DeliveredAt = &now
	return nil
}

type mockOrders struct {
	orders map[int64]*orders.Order
}

func (m *mockOrders) Get(ctx context.Context, id int64) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return o, nil
}

func (m *mockOrders) ChangeStatus(ctx context.Context, id int64, req orders.ChangeStatusRequest, actorID int64) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	o.Status = orders.OrderStatus(req.Status)
	return o, nil
}

type mockNotifier struct {
	enqueued []string
}

func (m *mockNotifier) EnqueueDeliveryNotification(ctx context.Context, dispatchID int64, trackingCode string) error {
	m.enqueued = append(m.enqueued, trackingCode)
	return nil
}

func newTestService() (*Service, *mockRepo, *mockOrders, *mockNotifier) {
	repo := newMockRepo()
	ord := &mockOrders{orders: map[int64]*orders.Order{
		1: {ID: 1, Number: "PED-AAA11111", Status: orders.StatusFinished},
		2: {ID: 2, Number: "PED-BBB22222", Status: orders.StatusProduction},
	}}
	notifier := &mockNotifier{}
	return NewService(repo, ord, notifier, nil, nil), repo, ord, notifier
}

func TestCreateAssignsTrackingCode(t *testing.T) {
	svc, _, _, _ := newTestService()

	dispatch, err := svc.Create(context.Background(), CreateDispatchRequest{
		OrderID: 1,
		Address: "Av. Principal 123",
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, dispatch.Status)
	assert.Len(t, dispatch.TrackingCode, 36)
}

func TestCreateRejectsUnfinishedOrder(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateDispatchRequest{
		OrderID: 2,
		Address: "Av. Principal 123",
	}, 4)
	assert.ErrorIs(t, err, ErrOrderNotFinished)
}

func TestConfirmDeliveryClosesOrderAndNotifies(t *testing.T) {
	svc, _, ord, notifier := newTestService()

	dispatch, err := svc.Create(context.Background(), CreateDispatchRequest{
		OrderID: 1,
		Address: "Av. Principal 123",
	}, 4)
	require.NoError(t, err)

	dispatch, err = svc.Depart(context.Background(), dispatch.ID, 4)
	require.NoError(t, err)
	require.Equal(t, StatusInTransit, dispatch.Status)

	dispatch, err = svc.ConfirmDelivery(context.Background(), dispatch.ID, 4)
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, dispatch.Status)
	require.NotNil(t, dispatch.ConfirmedBy)
	assert.Equal(t, int64(4), *dispatch.ConfirmedBy)
	assert.NotNil(t, dispatch.DeliveredAt)
	assert.Equal(t, orders.StatusDelivered, ord.orders[1].Status)
	assert.Equal(t, []string{dispatch.TrackingCode}, notifier.enqueued)
}

func TestConfirmRequiresInTransit(t *testing.T) {
	svc, _, _, notifier := newTestService()

	dispatch, err := svc.Create(context.Background(), CreateDispatchRequest{
		OrderID: 1,
		Address: "Av. Principal 123",
	}, 4)
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(context.Background(), dispatch.ID, 4)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, notifier.enqueued)
}

func TestTrackByCode(t *testing.T) {
	svc, _, _, _ := newTestService()

	dispatch, err := svc.Create(context.Background(), CreateDispatchRequest{
		OrderID: 1,
		Address: "Av. Principal 123",
	}, 4)
	require.NoError(t, err)

	found, err := svc.Track(context.Background(), dispatch.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, dispatch.ID, found.ID)

	_, err = svc.Track(context.Background(), "NO-EXISTE")
	assert.ErrorIs(t, err, ErrNotFound)
}
