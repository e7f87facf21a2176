package confections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/workshops"
)

type mockRepo struct {
	jobs      map[int64]*Confection
	materials map[int64][]MaterialUsage
	nextID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{jobs: make(map[int64]*Confection), materials: make(map[int64][]MaterialUsage), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, req ListConfectionsRequest) ([]Confection, int, error) {
	var out []Confection
	for _, c := range m.jobs {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*Confection, error) {
	c, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	copied.Materials = append([]MaterialUsage(nil), m.materials[id]...)
	return &copied, nil
}

func (m *mockRepo) Create(ctx context.Context, confection Confection) (int64, error) {
	id := m.nextID
	m.nextID++
	confection.ID = id
	m.jobs[id] = &confection
	return id, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, from, to ConfectionStatus) error {
	c, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return ErrStatusConflict
	}
	c.Status = to
	return nil
}

func (m *mockRepo) AddMaterial(ctx context.Context, usage MaterialUsage) (int64, error) {
	usage.ID = int64(len(m.materials[usage.ConfectionID]) + 1)
	m.materials[usage.ConfectionID] = append(m.materials[usage.ConfectionID], usage)
	return usage.ID, nil
}

func (m *mockRepo) ListMaterials(ctx context.Context, confectionID int64) ([]MaterialUsage, error) {
	return m.materials[confectionID], nil
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

type mockWorkshops struct {
	workshops map[int64]*workshops.Workshop
}

func (m *mockWorkshops) Get(ctx context.Context, id int64) (*workshops.Workshop, error) {
	w, ok := m.workshops[id]
	if !ok {
		return nil, workshops.ErrNotFound
	}
	return w, nil
}

func newTestService() (*Service, *mockRepo, *mockOrders, *mockWorkshops) {
	repo := newMockRepo()
	ord := &mockOrders{orders: map[int64]*orders.Order{
		1: {ID: 1, Number: "PED-AAA11111", Status: orders.StatusConfirmed},
		2: {ID: 2, Number: "PED-BBB22222", Status: orders.StatusPending},
	}}
	ws := &mockWorkshops{workshops: map[int64]*workshops.Workshop{
		1: {ID: 1, Name: "Taller Norte", IsActive: true},
		2: {ID: 2, Name: "Taller Cerrado", IsActive: false},
	}}
	return NewService(repo, ord, ws, nil), repo, ord, ws
}

func TestCreateAssignsJob(t *testing.T) {
	svc, _, _, _ := newTestService()

	job, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID:     1,
		WorkshopID:  1,
		Description: "20 camisas talla M",
		Quantity:    20,
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, job.Status)
}

func TestCreateRejectsPendingOrder(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID:     2,
		WorkshopID:  1,
		Description: "lote",
		Quantity:    5,
	}, 5)
	assert.ErrorIs(t, err, ErrOrderNotReady)
}

func TestCreateRejectsInactiveWorkshop(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID:     1,
		WorkshopID:  2,
		Description: "lote",
		Quantity:    5,
	}, 5)
	assert.ErrorIs(t, err, ErrWorkshopInactive)
}

func TestStatusOnlyMovesForward(t *testing.T) {
	svc, _, _, _ := newTestService()

	job, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID: 1, WorkshopID: 1, Description: "lote", Quantity: 5,
	}, 5)
	require.NoError(t, err)

	// Cannot jump straight to done.
	_, err = svc.ChangeStatus(context.Background(), job.ID, ChangeStatusRequest{Status: "terminada"}, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	job, err = svc.ChangeStatus(context.Background(), job.ID, ChangeStatusRequest{Status: "en_proceso"}, 5)
	require.NoError(t, err)
	job, err = svc.ChangeStatus(context.Background(), job.ID, ChangeStatusRequest{Status: "terminada"}, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, job.Status)

	// No going back.
	_, err = svc.ChangeStatus(context.Background(), job.ID, ChangeStatusRequest{Status: "en_proceso"}, 5)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRegisterMaterial(t *testing.T) {
	svc, _, _, _ := newTestService()

	job, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID: 1, WorkshopID: 1, Description: "lote", Quantity: 5,
	}, 5)
	require.NoError(t, err)

	job, err = svc.RegisterMaterial(context.Background(), job.ID, RegisterMaterialRequest{
		Material: "Tela lino azul",
		Quantity: 12.5,
		Unit:     "m",
	}, 8)
	require.NoError(t, err)
	require.Len(t, job.Materials, 1)
	assert.Equal(t, int64(8), job.Materials[0].RecordedBy)

	// Negative entries correct earlier ones.
	job, err = svc.RegisterMaterial(context.Background(), job.ID, RegisterMaterialRequest{
		Material: "Tela lino azul",
		Quantity: -2,
		Unit:     "m",
	}, 8)
	require.NoError(t, err)
	assert.Len(t, job.Materials, 2)
}

func TestRegisterMaterialRejectedWhenDone(t *testing.T) {
	svc, repo, _, _ := newTestService()

	job, err := svc.Create(context.Background(), CreateConfectionRequest{
		OrderID: 1, WorkshopID: 1, Description: "lote", Quantity: 5,
	}, 5)
	require.NoError(t, err)
	repo.jobs[job.ID].Status = StatusDone

	_, err = svc.RegisterMaterial(context.Background(), job.ID, RegisterMaterialRequest{
		Material: "Hilo", Quantity: 1, Unit: "cono",
	}, 8)
	assert.ErrorIs(t, err, ErrJobClosed)
}
