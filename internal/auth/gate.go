package auth

import (
	"log/slog"
	"net/http"

	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/platform/httpx"
)

// Redirect targets used by the page guard. The three denial outcomes
// stay distinguishable so user-facing messaging can differ.
const (
	LoginPath           = "/login"
	InactiveAccountPath = "/login?error=inactive_account"
	AccessDeniedPath    = "/access-denied"
)

// Denial messages returned by the API guard.
const (
	msgUnauthenticated = "No autenticado"
	msgInactiveAccount = "Tu cuenta está inactiva"
	msgForbidden       = "No tienes permisos para esta acción"
)

// Gate is the single choke point combining credential resolution and
// permission evaluation. The same decision logic backs the API guard
// and the page guard.
type Gate struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(resolver *Resolver, logger *slog.Logger) *Gate {
	return &Gate{resolver: resolver, logger: logger}
}

// Authorize resolves the request credential and evaluates requirement
// against the resolved role. Every failure path denies; the gate never
// fails open.
func (g *Gate) Authorize(r *http.Request, req Requirement) AccessDecision {
	res := g.resolver.Resolve(r)
	if res.Identity == nil {
		return AccessDecision{Reason: ReasonUnauthenticated, Cause: res.Cause}
	}
	if !res.Identity.Active() {
		return AccessDecision{Identity: res.Identity, Reason: ReasonForbidden, Cause: CauseInactiveAccount}
	}

	allowed := true
	if len(req.Permissions) > 0 {
		if req.RequireAll {
			allowed = authz.HasAll(res.Identity.Role, req.Permissions)
		} else {
			allowed = authz.HasAny(res.Identity.Role, req.Permissions)
		}
	}
	if !allowed {
		return AccessDecision{Identity: res.Identity, Reason: ReasonForbidden, Cause: CauseMissingPermission}
	}
	return AccessDecision{Authorized: true, Identity: res.Identity}
}

// RequireAny guards an API route: the caller must hold at least one of
// the listed permissions. Denials map to 401/403 JSON responses; on
// success the identity is attached to the request context.
func (g *Gate) RequireAny(perms ...authz.Permission) func(http.Handler) http.Handler {
	return g.requirePermissions(Requirement{Permissions: perms})
}

// RequireAll guards an API route demanding every listed permission.
func (g *Gate) RequireAll(perms ...authz.Permission) func(http.Handler) http.Handler {
	return g.requirePermissions(Requirement{Permissions: perms, RequireAll: true})
}

// RequireAuthenticated guards an API route that needs a signed-in
// active account but no specific permission.
func (g *Gate) RequireAuthenticated() func(http.Handler) http.Handler {
	return g.requirePermissions(Requirement{})
}

func (g *Gate) requirePermissions(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Authorize(r, req)
			if !decision.Authorized {
				g.deny(w, r, decision)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), decision.Identity)))
		})
	}
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, decision AccessDecision) {
	g.logDenial(r, decision)
	switch decision.Reason {
	case ReasonUnauthenticated:
		httpx.Error(w, http.StatusUnauthorized, msgUnauthenticated)
	default:
		if decision.Cause == CauseInactiveAccount {
			httpx.Error(w, http.StatusForbidden, msgInactiveAccount)
			return
		}
		httpx.Error(w, http.StatusForbidden, msgForbidden)
	}
}

// PageGuard protects a server-rendered entry point, redirecting on
// denial instead of returning a status-coded body.
func (g *Gate) PageGuard(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Authorize(r, req)
			if !decision.Authorized {
				g.logDenial(r, decision)
				http.Redirect(w, r, redirectTarget(decision), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), decision.Identity)))
		})
	}
}

func redirectTarget(decision AccessDecision) string {
	if decision.Reason == ReasonUnauthenticated {
		return LoginPath
	}
	if decision.Cause == CauseInactiveAccount {
		return InactiveAccountPath
	}
	return AccessDeniedPath
}

func (g *Gate) logDenial(r *http.Request, decision AccessDecision) {
	if g.logger == nil {
		return
	}
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.String("reason", string(decision.Reason)),
		slog.String("cause", string(decision.Cause)),
	}
	if decision.Identity != nil {
		attrs = append(attrs, slog.Int64("user_id", decision.Identity.ID))
	}
	g.logger.Info("access denied", attrs...)
}
