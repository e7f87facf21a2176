package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/auth"
	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/catalog/categories"
	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/clients"
	"github.com/telaris-erp/telaris/internal/confections"
	"github.com/telaris-erp/telaris/internal/dispatch"
	"github.com/telaris-erp/telaris/internal/identity"
	"github.com/telaris-erp/telaris/internal/observability"
	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/reports"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/internal/store"
	"github.com/telaris-erp/telaris/internal/users"
	"github.com/telaris-erp/telaris/internal/workshops"
)

type staticVerifier struct {
	tokens map[string]identity.Claims
}

func (v staticVerifier) Verify(ctx context.Context, token string) (identity.Claims, error) {
	claims, ok := v.tokens[token]
	if !ok {
		return identity.Claims{}, identity.ErrInvalidCredential
	}
	return claims, nil
}

type staticProfiles struct {
	profiles map[string]*auth.Identity
}

func (p staticProfiles) FindProfile(ctx context.Context, subject, email string) (*auth.Identity, error) {
	id, ok := p.profiles[subject]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return id, nil
}

type noAuthenticator struct{}

func (noAuthenticator) Authenticate(ctx context.Context, email, password string) (string, error) {
	return "", identity.ErrInvalidCredential
}

// newTestRouter builds a full router over fake identity backends. The
// repositories stay nil: the cases below never get past the gate or
// only hit routes that read nothing.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}

	sessions := shared.NewSessionManager(redisClient, "telaris_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")

	verifier := staticVerifier{tokens: map[string]identity.Claims{
		"token-recepcion": {Subject: "sub-recepcion", Email: "recepcion@telaris.local"},
		"token-taller":    {Subject: "sub-taller", Email: "taller@telaris.local"},
		"token-inactivo":  {Subject: "sub-inactivo", Email: "baja@telaris.local"},
	}}
	profiles := staticProfiles{profiles: map[string]*auth.Identity{
		"sub-recepcion": {ID: 1, Email: "recepcion@telaris.local", Name: "Recepción", Role: authz.RoleReceptionist, Status: auth.StatusActive},
		"sub-taller":    {ID: 2, Email: "taller@telaris.local", Name: "Taller", Role: authz.RoleWorkshopRep, Status: auth.StatusActive},
		"sub-inactivo":  {ID: 3, Email: "baja@telaris.local", Name: "Baja", Role: authz.RoleReceptionist, Status: auth.StatusInactive},
	}}

	resolver := auth.NewResolver(verifier, profiles, logger)
	gate := auth.NewGate(resolver, logger)
	authService := auth.NewService(noAuthenticator{}, resolver, auth.NewStateNotifier())

	return NewRouter(RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		AuthHandler:        auth.NewHandler(logger, authService, gate, sessions),
		UsersHandler:       users.NewHandler(logger, users.NewService(nil, nil), gate),
		ClientsHandler:     clients.NewHandler(logger, clients.NewService(nil, nil), gate),
		CategoriesHandler:  categories.NewHandler(logger, categories.NewService(nil, nil), gate),
		ProductsHandler:    products.NewHandler(logger, products.NewService(nil, nil), gate),
		WorkshopsHandler:   workshops.NewHandler(logger, workshops.NewService(nil, nil), gate),
		OrdersHandler:      orders.NewHandler(logger, orders.NewService(nil, nil, nil), gate),
		ConfectionsHandler: confections.NewHandler(logger, confections.NewService(nil, nil, nil, nil), gate),
		DispatchHandler:    dispatch.NewHandler(logger, dispatch.NewService(nil, nil, nil, nil, logger), gate),
		ReportsHandler:     reports.NewHandler(logger, reports.NewService(nil, nil), gate),
		StoreHandler:       store.NewHandler(logger, store.NewService(nil, nil, nil, nil, nil, nil), nil),
		Metrics:            observability.NewMetrics(),
	})
}

func TestRouterHealthzAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
}

func TestRouterRejectsAnonymousAPIRequest(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.JSONEq(t, `{"error": "No autenticado"}`, res.Body.String())
}

func TestRouterRejectsMissingPermission(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer token-taller")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"error": "No tienes permisos para esta acción"}`, res.Body.String())
}

func TestRouterRejectsInactiveAccount(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer token-inactivo")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"error": "Tu cuenta está inactiva"}`, res.Body.String())
}

func TestRouterServesAuthenticatedProfile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token-recepcion")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "recepcion@telaris.local")
}

func TestRouterRequiresCSRFForCookieWrites(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/store/checkout", nil))

	require.Equal(t, http.StatusForbidden, res.Code)
}
