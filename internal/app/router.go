package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/telaris-erp/telaris/internal/auth"
	"github.com/telaris-erp/telaris/internal/catalog/categories"
	"github.com/telaris-erp/telaris/internal/catalog/products"
	"github.com/telaris-erp/telaris/internal/clients"
	"github.com/telaris-erp/telaris/internal/confections"
	"github.com/telaris-erp/telaris/internal/dispatch"
	"github.com/telaris-erp/telaris/internal/observability"
	"github.com/telaris-erp/telaris/internal/orders"
	"github.com/telaris-erp/telaris/internal/reports"
	"github.com/telaris-erp/telaris/internal/shared"
	"github.com/telaris-erp/telaris/internal/store"
	"github.com/telaris-erp/telaris/internal/users"
	"github.com/telaris-erp/telaris/internal/workshops"
	"github.com/telaris-erp/telaris/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	ClientsHandler    *clients.Handler
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	WorkshopsHandler  *workshops.Handler
	OrdersHandler     *orders.Handler
	ConfectionsHandler *confections.Handler
	DispatchHandler   *dispatch.Handler
	ReportsHandler    *reports.Handler
	StoreHandler      *store.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Telaris defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	loginLimit, loginWindow := 10, time.Minute
	if params.Config != nil {
		if params.Config.LoginRateLimit > 0 {
			loginLimit = params.Config.LoginRateLimit
		}
		if params.Config.LoginRateWindow > 0 {
			loginWindow = params.Config.LoginRateWindow
		}
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.Limit(loginLimit, loginWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/clients", params.ClientsHandler.MountRoutes)
	r.Route("/categories", params.CategoriesHandler.MountRoutes)
	r.Route("/products", params.ProductsHandler.MountRoutes)
	r.Route("/workshops", params.WorkshopsHandler.MountRoutes)
	r.Route("/orders", params.OrdersHandler.MountRoutes)
	r.Route("/confections", params.ConfectionsHandler.MountRoutes)
	r.Route("/dispatch", params.DispatchHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	r.Route("/store", params.StoreHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
