package store

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/dispatch"
	"github.com/telaris-erp/telaris/internal/platform/httpx"
	"github.com/telaris-erp/telaris/internal/shared"
)

// Tracker resolves public shipment tracking codes.
type Tracker interface {
	Track(ctx context.Context, code string) (*dispatch.Dispatch, error)
}

// Handler serves the public storefront API. No access gate: these
// routes are anonymous, keyed by the visitor's cookie session.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tracker   Tracker
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, tracker Tracker) *Handler {
	return &Handler{logger: logger, service: service, tracker: tracker, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/products", h.browseCatalog)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/cart", h.viewCart)
	r.Post("/cart", h.addToCart)
	r.Put("/cart/{productID}", h.updateCartItem)
	r.Delete("/cart/{productID}", h.removeFromCart)
	r.Post("/checkout", h.checkout)
	r.Get("/track/{code}", h.track)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("store categories", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) browseCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var categoryID *int64
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Filtro category_id no válido")
			return
		}
		categoryID = &id
	}
	var search *string
	if v := q.Get("search"); v != "" {
		search = &v
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	items, total, err := h.service.BrowseCatalog(r.Context(), categoryID, search, page, perPage)
	if err != nil {
		h.logger.Error("store catalog", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusBadRequest, "Sesión no disponible")
		return
	}
	view, err := h.service.ViewCart(r.Context(), sess.ID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusBadRequest, "Sesión no disponible")
		return
	}
	var req AddToCartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.service.AddToCart(r.Context(), sess.ID, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusBadRequest, "Sesión no disponible")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	var req UpdateCartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.service.UpdateCartItem(r.Context(), sess.ID, productID, req.Quantity)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusBadRequest, "Sesión no disponible")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	view, err := h.service.RemoveFromCart(r.Context(), sess.ID, productID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusBadRequest, "Sesión no disponible")
		return
	}
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.service.Checkout(r.Context(), sess.ID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) track(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	shipment, err := h.tracker.Track(r.Context(), code)
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Código de seguimiento no encontrado")
			return
		}
		h.logger.Error("store track", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	// Public view: only the fields a customer needs.
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tracking_code": shipment.TrackingCode,
		"status":        shipment.Status,
		"carrier":       shipment.Carrier,
		"delivered_at":  shipment.DeliveredAt,
	})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, products.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Producto no encontrado")
	case errors.Is(err, ErrEmptyCart):
		httpx.Error(w, http.StatusBadRequest, "El carrito está vacío")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Error(w, http.StatusConflict, "La compra ya fue procesada")
	default:
		h.logger.Error("store handler", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}
