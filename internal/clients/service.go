package clients

import (
	"context"
	"strconv"
	"strings"

	"github.com/telaris-erp/telaris/internal/shared"
)

// Service handles client bookkeeping for the back office and the
// storefront checkout.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns clients matching the filters plus the total count.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

// Get fetches a single client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, req CreateClientRequest, actorID int64) (*Client, error) {
	client := Client{
		Name:     strings.TrimSpace(req.Name),
		Document: req.Document,
		Email:    normalizeEmail(req.Email),
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Notes:    req.Notes,
		IsActive: true,
	}
	id, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, err
	}
	client.ID = id

	s.recordAudit(ctx, actorID, "cliente.crear", id, map[string]any{"nombre": client.Name})
	return s.repo.Get(ctx, id)
}

// FindOrCreateByEmail resolves the client record used by a storefront
// checkout, creating it on first purchase.
func (s *Service) FindOrCreateByEmail(ctx context.Context, email, name string) (*Client, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	client, err := s.repo.GetByEmail(ctx, normalized)
	if err == nil {
		return client, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	id, err := s.repo.Create(ctx, Client{
		Name:     strings.TrimSpace(name),
		Email:    &normalized,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to a client.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest, actorID int64) (*Client, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["nombre"] = strings.TrimSpace(*req.Name)
	}
	if req.Document != nil {
		updates["documento"] = *req.Document
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["telefono"] = *req.Phone
	}
	if req.Address != nil {
		updates["direccion"] = *req.Address
	}
	if req.City != nil {
		updates["ciudad"] = *req.City
	}
	if req.Notes != nil {
		updates["notas"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["activo"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "cliente.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

// Delete soft-deletes a client record.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "cliente.eliminar", id, nil)
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	return &normalized
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "clientes",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
