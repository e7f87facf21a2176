package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/telaris-erp/telaris/internal/auth"
	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    *auth.Gate
}

func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(authz.PermViewReports))
		r.Get("/orders", h.orderSummary)
		r.Get("/dispatch", h.dispatchSummary)
		r.Get("/products/top", h.topProducts)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(authz.PermExportReports))
		r.Get("/{report}/csv", h.renderCSV)
		r.Post("/{report}/export", h.scheduleExport)
	})
}

func parsePeriod(r *http.Request) (Range, error) {
	var period Range
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Range{}, err
		}
		period.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Range{}, err
		}
		period.To = t
	}
	return period, nil
}

func (h *Handler) orderSummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Rango de fechas no válido")
		return
	}
	rows, err := h.service.OrderSummary(r.Context(), period)
	if err != nil {
		h.logger.Error("order summary", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) dispatchSummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Rango de fechas no válido")
		return
	}
	rows, err := h.service.DispatchSummary(r.Context(), period)
	if err != nil {
		h.logger.Error("dispatch summary", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Rango de fechas no válido")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.service.TopProducts(r.Context(), period, limit)
	if err != nil {
		h.logger.Error("top products", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) renderCSV(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Rango de fechas no válido")
		return
	}
	data, err := h.service.RenderCSV(r.Context(), report, period)
	if err != nil {
		if errors.Is(err, ErrUnknownReport) {
			httpx.Error(w, http.StatusNotFound, "Informe desconocido")
			return
		}
		h.logger.Error("render csv", slog.String("report", report), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) scheduleExport(w http.ResponseWriter, r *http.Request) {
	report := chi.URLParam(r, "report")
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Rango de fechas no válido")
		return
	}
	var requestedBy int64
	if identity := auth.IdentityFromContext(r.Context()); identity != nil {
		requestedBy = identity.ID
	}
	if err := h.service.ScheduleExport(r.Context(), report, period, requestedBy); err != nil {
		if errors.Is(err, ErrUnknownReport) {
			httpx.Error(w, http.StatusNotFound, "Informe desconocido")
			return
		}
		h.logger.Error("schedule export", slog.String("report", report), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "encolado"})
}
