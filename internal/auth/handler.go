package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/telaris-erp/telaris/internal/platform/httpx"
	"github.com/telaris-erp/telaris/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *Gate
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *Gate, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuthenticated())
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Cuerpo de solicitud no válido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Email o contraseña no válidos")
		return
	}

	id, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInactiveAccount) {
			httpx.Error(w, http.StatusForbidden, msgInactiveAccount)
			return
		}
		httpx.Error(w, http.StatusUnauthorized, "Email o contraseña incorrectos")
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.SetUser(strconv.FormatInt(id.ID, 10))
		sess.SetAccessToken(token)
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, User: id})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var token string
	if sess != nil {
		token = sess.AccessToken()
	}
	id := IdentityFromContext(r.Context())
	if id == nil {
		// Best effort: resolve so the notifier receives the user, but a
		// broken credential still clears the session below.
		if res := h.gate.resolver.Resolve(r); res.Identity != nil {
			id = res.Identity
		}
	}
	if err := h.service.Logout(r.Context(), token, id); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	if id == nil {
		httpx.Error(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, id)
}
