package categories

import (
	"context"
	"strconv"
	"strings"

	"github.com/telaris-erp/telaris/internal/shared"
)

type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, req ListCategoriesRequest) ([]Category, int, error) {
	return s.repo.List(ctx, req)
}

// ListActive returns the categories visible to the public storefront.
func (s *Service) ListActive(ctx context.Context) ([]Category, error) {
	active := true
	categories, _, err := s.repo.List(ctx, ListCategoriesRequest{IsActive: &active, PerPage: 200})
	return categories, err
}

func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCategoryRequest, actorID int64) (*Category, error) {
	category := Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	id, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "categoria.crear", id, map[string]any{"nombre": category.Name})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCategoryRequest, actorID int64) (*Category, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["nombre"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["descripcion"] = *req.Description
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
	s.recordAudit(ctx, actorID, "categoria.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "categoria.eliminar", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "categorias",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
