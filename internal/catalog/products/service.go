package products

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

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

// ListPublic returns active products for the storefront catalog.
func (s *Service) ListPublic(ctx context.Context, categoryID *int64, search *string, page, perPage int) ([]Product, int, error) {
	active := true
	return s.repo.List(ctx, ListProductsRequest{
		CategoryID: categoryID,
		Search:     search,
		IsActive:   &active,
		Page:       page,
		PerPage:    perPage,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest, actorID int64) (*Product, error) {
	product := Product{
		CategoryID:  req.CategoryID,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "producto.crear", id, map[string]any{"codigo": product.Code, "nombre": product.Name})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest, actorID int64) (*Product, error) {
	updates := make(map[string]any)
	if req.CategoryID != nil {
		updates["categoria_id"] = *req.CategoryID
	}
	if req.Name != nil {
		updates["nombre"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["descripcion"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["imagen_url"] = *req.ImageURL
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
	s.recordAudit(ctx, actorID, "producto.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

// UpdatePrice changes the sale price. Kept separate from Update so the
// price trail in the audit log stays easy to follow.
func (s *Service) UpdatePrice(ctx context.Context, id int64, req UpdatePriceRequest, actorID int64) (*Product, error) {
	if err := s.repo.Update(ctx, id, map[string]any{"precio": req.Price}); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "producto.precio", id, map[string]any{"precio": req.Price})
	return s.repo.Get(ctx, id)
}

// AdjustStock applies a manual stock correction.
func (s *Service) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest, actorID int64) (*Product, error) {
	if _, err := s.repo.AdjustStock(ctx, id, req.Delta); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "producto.ajustar_stock", id, map[string]any{
		"delta":  req.Delta,
		"motivo": req.Reason,
	})
	return s.repo.Get(ctx, id)
}

// Reserve decrements stock for a confirmed sale. Callers roll the
// reservation back with Release when the sale is cancelled.
func (s *Service) Reserve(ctx context.Context, id int64, quantity int) error {
	_, err := s.repo.AdjustStock(ctx, id, -quantity)
	return err
}

// Release returns previously reserved units to stock.
func (s *Service) Release(ctx context.Context, id int64, quantity int) error {
	_, err := s.repo.AdjustStock(ctx, id, quantity)
	return err
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "producto.eliminar", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "productos",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
