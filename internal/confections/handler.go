package confections

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telaris-erp/telaris/internal/auth"
	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/platform/httpx"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/internal/workshops"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *auth.Gate
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(authz.PermViewConfections))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(authz.PermManageConfections))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Post("/{id}/status", h.changeStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(authz.PermRegisterMaterialUsage))
		r.Post("/{id}/materials", h.registerMaterial)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListConfectionsRequest{}
	if v := q.Get("order_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Filtro order_id no válido")
			return
		}
		req.OrderID = &id
	}
	if v := q.Get("workshop_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Filtro workshop_id no válido")
			return
		}
		req.WorkshopID = &id
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list confections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       list,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	confection, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, confection)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateConfectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	confection, err := h.service.Create(r.Context(), req, actorID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, confection)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	var req UpdateConfectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	confection, err := h.service.Update(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, confection)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	var req ChangeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	confection, err := h.service.ChangeStatus(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, confection)
}

func (h *Handler) registerMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	var req RegisterMaterialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	confection, err := h.service.RegisterMaterial(r.Context(), id, req, actorID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, confection)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Confección no encontrada")
	case errors.Is(err, orders.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Pedido no encontrado")
	case errors.Is(err, workshops.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Taller no encontrado")
	case errors.Is(err, ErrOrderNotReady):
		httpx.Error(w, http.StatusConflict, "El pedido no está en producción")
	case errors.Is(err, ErrWorkshopInactive):
		httpx.Error(w, http.StatusConflict, "El taller no está activo")
	case errors.Is(err, ErrJobClosed):
		httpx.Error(w, http.StatusConflict, "La confección ya está terminada")
	case errors.Is(err, ErrUnknownStatus):
		httpx.Error(w, http.StatusBadRequest, "Estado desconocido")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Error(w, http.StatusConflict, "Transición de estado no permitida")
	case errors.Is(err, ErrStatusConflict):
		httpx.Error(w, http.StatusConflict, "La confección fue modificada por otra operación")
	default:
		h.logger.Error("confections handler", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}

func actorID(r *http.Request) int64 {
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		return id.ID
	}
	return 0
}
