package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/shared"
)

var (
	ErrUnknownStatus     = errors.New("unknown dispatch status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderNotFinished  = errors.New("order is not finished")
)

// OrderPipeline is the slice of the order service dispatch needs to
// verify and close out orders.
type OrderPipeline interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
	ChangeStatus(ctx context.Context, id int64, req orders.ChangeStatusRequest, actorID int64) (*orders.Order, error)
}

// Notifier enqueues the customer notification sent after a confirmed
// delivery. The worker process picks it up asynchronously.
type Notifier interface {
	EnqueueDeliveryNotification(ctx context.Context, dispatchID int64, trackingCode string) error
}

// Service manages shipments of finished orders.
type Service struct {
	repo     Repository
	orders   OrderPipeline
	notifier Notifier
	audit    *shared.AuditLogger
	logger   *slog.Logger
}

func NewService(repo Repository, orderPipeline OrderPipeline, notifier Notifier, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, orders: orderPipeline, notifier: notifier, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, req ListDispatchesRequest) ([]Dispatch, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (*Dispatch, error) {
	return s.repo.Get(ctx, id)
}

// Track resolves a dispatch by its public tracking code.
func (s *Service) Track(ctx context.Context, code string) (*Dispatch, error) {
	return s.repo.GetByTrackingCode(ctx, strings.TrimSpace(code))
}

// Create opens a dispatch for a finished order and assigns the
// tracking code shared with the customer.
func (s *Service) Create(ctx context.Context, req CreateDispatchRequest, actorID int64) (*Dispatch, error) {
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.StatusFinished {
		return nil, fmt.Errorf("%w: pedido %s en estado %s", ErrOrderNotFinished, order.Number, order.Status)
	}

	dispatch := Dispatch{
		OrderID:      req.OrderID,
		TrackingCode: newTrackingCode(),
		Address:      strings.TrimSpace(req.Address),
		Carrier:      req.Carrier,
		Status:       StatusPending,
		Notes:        req.Notes,
	}
	id, err := s.repo.Create(ctx, dispatch)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "despacho.crear", id, map[string]any{
		"pedido_id": req.OrderID,
		"codigo":    dispatch.TrackingCode,
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateDispatchRequest, actorID int64) (*Dispatch, error) {
	updates := make(map[string]any)
	if req.Address != nil {
		updates["direccion_entrega"] = strings.TrimSpace(*req.Address)
	}
	if req.Carrier != nil {
		updates["transportista"] = *req.Carrier
	}
	if req.Notes != nil {
		updates["notas"] = *req.Notes
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "despacho.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

// Depart puts the shipment on the road.
func (s *Service) Depart(ctx context.Context, id int64, actorID int64) (*Dispatch, error) {
	dispatch, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dispatch.Status.CanTransitionTo(StatusInTransit) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, dispatch.Status, StatusInTransit)
	}
	if err := s.repo.UpdateStatus(ctx, id, dispatch.Status, StatusInTransit); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "despacho.en_ruta", id, nil)
	return s.repo.Get(ctx, id)
}

// ConfirmDelivery closes the dispatch, moves the order to delivered
// and enqueues the customer notification.
func (s *Service) ConfirmDelivery(ctx context.Context, id int64, actorID int64) (*Dispatch, error) {
	dispatch, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dispatch.Status.CanTransitionTo(StatusDelivered) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, dispatch.Status, StatusDelivered)
	}

	if err := s.repo.MarkDelivered(ctx, id, actorID); err != nil {
		return nil, err
	}

	// Close out the order. A failure here is logged, not fatal: the
	// delivery already happened.
	if _, err := s.orders.ChangeStatus(ctx, dispatch.OrderID, orders.ChangeStatusRequest{
		Status: string(orders.StatusDelivered),
	}, actorID); err != nil && s.logger != nil {
		s.logger.Warn("close order after delivery",
			slog.Int64("pedido_id", dispatch.OrderID), slog.Any("error", err))
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueDeliveryNotification(ctx, id, dispatch.TrackingCode); err != nil && s.logger != nil {
			s.logger.Warn("enqueue delivery notification",
				slog.Int64("despacho_id", id), slog.Any("error", err))
		}
	}

	s.recordAudit(ctx, actorID, "despacho.confirmar_entrega", id, map[string]any{
		"codigo": dispatch.TrackingCode,
	})
	return s.repo.Get(ctx, id)
}

func newTrackingCode() string {
	return strings.ToUpper(uuid.NewString())
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "despachos",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
