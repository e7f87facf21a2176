package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/authz"
)

type mockRepo struct {
	users  map[int64]*User
	nextID int64

	listErr   error
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if req.Role != nil && string(u.Role) != *req.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepo) Create(ctx context.Context, user User, passwordHash string) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return 0, ErrAlreadyExists
		}
	}
	id := m.nextID
	m.nextID++
	user.ID = id
	m.users[id] = &user
	return id, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	if v, ok := updates["nombre"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["rol"]; ok {
		u.Role = authz.Role(v.(string))
	}
	if v, ok := updates["estado"]; ok {
		u.Status = v.(string)
	}
	return nil
}

func (m *mockRepo) SoftDelete(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	now := u.CreatedAt
	u.DeletedAt = &now
	u.Status = "inactivo"
	return nil
}

func (m *mockRepo) Restore(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok || u.DeletedAt == nil {
		return ErrNotFound
	}
	u.DeletedAt = nil
	u.Status = "activo"
	return nil
}

func TestCreateAssignsSubjectAndDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "Maria@Telaris.Local",
		Name:     "María Pérez",
		Role:     "receptionist",
		Password: "supersecret",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "maria@telaris.local", user.Email)
	assert.Equal(t, authz.RoleReceptionist, user.Role)
	assert.Equal(t, "activo", user.Status)
	assert.NotEmpty(t, user.Subject)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "x@y.z", Name: "X", Role: "superuser",
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	_, err := svc.Create(context.Background(), CreateUserRequest{Email: "a@b.c", Name: "A", Role: "helper"}, 1)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserRequest{Email: "a@b.c", Name: "B", Role: "helper"}, 1)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), CreateUserRequest{Email: "a@b.c", Name: "A", Role: "helper"}, 1)
	require.NoError(t, err)

	name := "Ana"
	updated, err := svc.Update(context.Background(), created.ID, UpdateUserRequest{Name: &name}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, authz.RoleHelper, updated.Role)

	bad := "wizard"
	_, err = svc.Update(context.Background(), created.ID, UpdateUserRequest{Role: &bad}, 1)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeactivateAndRestore(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), CreateUserRequest{Email: "a@b.c", Name: "A", Role: "cutter"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID, 1))
	assert.ErrorIs(t, svc.Deactivate(context.Background(), created.ID, 1), ErrNotFound)

	require.NoError(t, svc.Restore(context.Background(), created.ID, 1))
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "activo", got.Status)
}
