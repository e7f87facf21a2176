package confections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/internal/workshops"
)

var (
	ErrUnknownStatus     = errors.New("unknown confection status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderNotReady     = errors.New("order is not in production")
	ErrWorkshopInactive  = errors.New("workshop is not active")
	ErrJobClosed         = errors.New("confection is already finished")
)

// OrderLookup resolves the order a job is assigned against.
type OrderLookup interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
}

// WorkshopLookup resolves the workshop taking the job.
type WorkshopLookup interface {
	Get(ctx context.Context, id int64) (*workshops.Workshop, error)
}

// Service manages production jobs and their material consumption.
type Service struct {
	repo      Repository
	orders    OrderLookup
	workshops WorkshopLookup
	audit     *shared.AuditLogger
}

func NewService(repo Repository, orderLookup OrderLookup, workshopLookup WorkshopLookup, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, orders: orderLookup, workshops: workshopLookup, audit: audit}
}

func (s *Service) List(ctx context.Context, req ListConfectionsRequest) ([]Confection, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (*Confection, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns a production job. The order must already be confirmed
// or in production, and the workshop must be active.
func (s *Service) Create(ctx context.Context, req CreateConfectionRequest, actorID int64) (*Confection, error) {
	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.StatusConfirmed && order.Status != orders.StatusProduction {
		return nil, fmt.Errorf("%w: pedido %s en estado %s", ErrOrderNotReady, order.Number, order.Status)
	}
	workshop, err := s.workshops.Get(ctx, req.WorkshopID)
	if err != nil {
		return nil, err
	}
	if !workshop.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrWorkshopInactive, workshop.Name)
	}

	confection := Confection{
		OrderID:     req.OrderID,
		WorkshopID:  req.WorkshopID,
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		Status:      StatusAssigned,
	}
	id, err := s.repo.Create(ctx, confection)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "confeccion.crear", id, map[string]any{
		"pedido_id": req.OrderID,
		"taller_id": req.WorkshopID,
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateConfectionRequest, actorID int64) (*Confection, error) {
	confection, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if confection.Status == StatusDone {
		return nil, ErrJobClosed
	}

	updates := make(map[string]any)
	if req.WorkshopID != nil {
		workshop, err := s.workshops.Get(ctx, *req.WorkshopID)
		if err != nil {
			return nil, err
		}
		if !workshop.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrWorkshopInactive, workshop.Name)
		}
		updates["taller_id"] = *req.WorkshopID
	}
	if req.Description != nil {
		updates["descripcion"] = strings.TrimSpace(*req.Description)
	}
	if req.Quantity != nil {
		updates["cantidad"] = *req.Quantity
	}
	if len(updates) == 0 {
		return confection, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "confeccion.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

// ChangeStatus moves the job forward. Jobs only advance, they never go
// back to an earlier state.
func (s *Service) ChangeStatus(ctx context.Context, id int64, req ChangeStatusRequest, actorID int64) (*Confection, error) {
	next := ConfectionStatus(strings.TrimSpace(req.Status))
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, req.Status)
	}

	confection, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !confection.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, confection.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, confection.Status, next); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "confeccion.cambiar_estado", id, map[string]any{
		"de": string(confection.Status),
		"a":  string(next),
	})
	return s.repo.Get(ctx, id)
}

// RegisterMaterial appends a material consumption entry. Negative
// quantities correct earlier entries; closed jobs reject new entries.
func (s *Service) RegisterMaterial(ctx context.Context, id int64, req RegisterMaterialRequest, actorID int64) (*Confection, error) {
	confection, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if confection.Status == StatusDone {
		return nil, ErrJobClosed
	}

	_, err = s.repo.AddMaterial(ctx, MaterialUsage{
		ConfectionID: id,
		Material:     strings.TrimSpace(req.Material),
		Quantity:     req.Quantity,
		Unit:         strings.TrimSpace(req.Unit),
		RecordedBy:   actorID,
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "confeccion.registrar_material", id, map[string]any{
		"material": req.Material,
		"cantidad": req.Quantity,
		"unidad":   req.Unit,
	})
	return s.repo.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "confecciones",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
