package workshops

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

func (s *Service) List(ctx context.Context, req ListWorkshopsRequest) ([]Workshop, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (*Workshop, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateWorkshopRequest, actorID int64) (*Workshop, error) {
	workshop := Workshop{
		Name:             strings.TrimSpace(req.Name),
		RepresentativeID: req.RepresentativeID,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		Capacity:         req.Capacity,
		IsActive:         true,
	}
	id, err := s.repo.Create(ctx, workshop)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "taller.crear", id, map[string]any{"nombre": workshop.Name})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateWorkshopRequest, actorID int64) (*Workshop, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["nombre"] = strings.TrimSpace(*req.Name)
	}
	if req.RepresentativeID != nil {
		updates["representante_id"] = *req.RepresentativeID
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
	if req.Capacity != nil {
		updates["capacidad"] = *req.Capacity
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
	s.recordAudit(ctx, actorID, "taller.actualizar", id, updates)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "taller.eliminar", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "talleres",
		EntityID: strconv.FormatInt(entityID, 10),
		Detail:   detail,
	})
}
