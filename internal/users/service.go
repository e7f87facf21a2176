package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/shared"
)

// Service handles user management rules.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// ErrInvalidRole indicates the requested role is not part of the
// closed role set.
var ErrInvalidRole = errors.New("unknown role")

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns users matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	return s.repo.List(ctx, req)
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new back-office account. The optional password is
// hashed for local-provider deployments; hosted-provider deployments
// leave it empty and the provider owns the credential.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, actorID int64) (*User, error) {
	role := authz.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}

	var hash string
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}

	user := User{
		Subject: uuid.NewString(),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Name:    strings.TrimSpace(req.Name),
		Role:    role,
		Status:  "activo",
	}
	id, err := s.repo.Create(ctx, user, hash)
	if err != nil {
		return nil, err
	}
	user.ID = id

	s.recordAudit(ctx, actorID, "usuario.crear", id, map[string]any{"email": user.Email, "rol": string(role)})
	return &user, nil
}

// Update applies a partial update to a user.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (*User, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["nombre"] = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role := authz.Role(strings.TrimSpace(*req.Role))
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *req.Role)
		}
		updates["rol"] = string(role)
	}
	if req.Status != nil {
		updates["estado"] = *req.Status
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "usuario.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

// Deactivate soft-deletes a user account.
func (s *Service) Deactivate(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "usuario.desactivar", id, nil)
	return nil
}

// Restore reactivates a previously deactivated account.
func (s *Service) Restore(ctx context.Context, id, actorID int64) error {
	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "usuario.reactivar", id, nil)
	return nil
}

// UpdateOwnProfile lets a user change their own display name.
func (s *Service) UpdateOwnProfile(ctx context.Context, userID int64, req UpdateOwnProfileRequest) (*User, error) {
	if err := s.repo.Update(ctx, userID, map[string]any{"nombre": strings.TrimSpace(req.Name)}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "usuarios",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
