package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/shared"
)

var (
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotEditable        = errors.New("order is no longer editable")
	ErrProductUnavailable = errors.New("product is not available")
)

// ProductCatalog is the slice of the product service orders need:
// price/name lookups at order time and stock reservation.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (*products.Product, error)
	Reserve(ctx context.Context, id int64, quantity int) error
	Release(ctx context.Context, id int64, quantity int) error
}

// Service implements order intake and the status pipeline.
type Service struct {
	repo    Repository
	catalog ProductCatalog
	audit   *shared.AuditLogger
}

func NewService(repo Repository, catalog ProductCatalog, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, catalog: catalog, audit: audit}
}

func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a pending order. Prices and product names are
// snapshotted from the catalog at creation time.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, createdBy *int64) (*Order, error) {
	items, total, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := Order{
		Number:       newOrderNumber(),
		ClientID:     req.ClientID,
		CreatedBy:    createdBy,
		Status:       StatusPending,
		Notes:        req.Notes,
		DeliveryDate: req.DeliveryDate,
		Total:        total,
		Items:        items,
	}
	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, createdBy, "pedido.crear", id, map[string]any{
		"numero": order.Number,
		"total":  total,
	})
	return s.repo.Get(ctx, id)
}

// Update edits notes, delivery date and line items while the order is
// still pending.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest, actorID int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanEdit() {
		return nil, ErrNotEditable
	}

	updates := make(map[string]any)
	if req.Notes != nil {
		updates["notas"] = *req.Notes
	}
	if req.DeliveryDate != nil {
		updates["fecha_entrega"] = *req.DeliveryDate
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}

	if req.Items != nil {
		items, total, err := s.buildItems(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceItems(ctx, id, items, total); err != nil {
			return nil, err
		}
	}

	s.recordAudit(ctx, &actorID, "pedido.actualizar", id, nil)
	return s.repo.Get(ctx, id)
}

// ChangeStatus advances the order through the pipeline. Confirming
// reserves finished-goods stock; voiding an order that holds stock
// returns it.
func (s *Service) ChangeStatus(ctx context.Context, id int64, req ChangeStatusRequest, actorID int64) (*Order, error) {
	next := OrderStatus(strings.TrimSpace(req.Status))
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, req.Status)
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status, next); err != nil {
		return nil, err
	}

	switch {
	case order.Status == StatusPending && next == StatusConfirmed:
		if err := s.reserveStock(ctx, order.Items); err != nil {
			// Reservation failed, put the order back.
			_ = s.repo.UpdateStatus(ctx, id, next, order.Status)
			return nil, err
		}
	case next == StatusVoided && order.Status.HoldsStock():
		s.releaseStock(ctx, order.Items)
	}

	s.recordAudit(ctx, &actorID, "pedido.cambiar_estado", id, map[string]any{
		"de": string(order.Status),
		"a":  string(next),
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) buildItems(ctx context.Context, reqs []OrderItemRequest) ([]OrderItem, float64, error) {
	var items []OrderItem
	var total float64
	for _, ir := range reqs {
		product, err := s.catalog.Get(ctx, ir.ProductID)
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: producto %d", ErrProductUnavailable, ir.ProductID)
			}
			return nil, 0, err
		}
		if !product.IsActive {
			return nil, 0, fmt.Errorf("%w: producto %d", ErrProductUnavailable, ir.ProductID)
		}
		subtotal := product.Price * float64(ir.Quantity)
		items = append(items, OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    ir.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		total += subtotal
	}
	return items, total, nil
}

func (s *Service) reserveStock(ctx context.Context, items []OrderItem) error {
	for i, it := range items {
		if err := s.catalog.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseStock(ctx, items[:i])
			return err
		}
	}
	return nil
}

func (s *Service) releaseStock(ctx context.Context, items []OrderItem) {
	for _, it := range items {
		_ = s.catalog.Release(ctx, it.ProductID, it.Quantity)
	}
}

func newOrderNumber() string {
	return "PED-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) recordAudit(ctx context.Context, actorID *int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	var actor int64
	if actorID != nil {
		actor = *actorID
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actor,
		Action:   action,
		Entity:   "pedidos",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
