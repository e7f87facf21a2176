// Package auth resolves request credentials into identities and gates
// access to every guarded page and API endpoint.
package auth

import (
	"context"

	"github.com/telaris-erp/telaris/internal/authz"
)

// Identity is the authenticated principal for a single request. It is
// built fresh on every resolution and never persisted.
type Identity struct {
	ID     int64      `json:"id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   authz.Role `json:"role"`
	Status string     `json:"status"`
}

// Account status values stored in usuarios.estado.
const (
	StatusActive    = "activo"
	StatusInactive  = "inactivo"
	StatusSuspended = "suspendido"
)

// Active reports whether the account may use the system.
func (i *Identity) Active() bool {
	return i != nil && i.Status == StatusActive
}

// Reason is the outward-facing denial category.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Cause records the precise denial cause for logging and redirect
// selection. Causes that would leak account existence collapse into the
// same outward Reason.
type Cause string

const (
	CauseNone              Cause = ""
	CauseNoCredential      Cause = "no_credential"
	CauseInvalidCredential Cause = "invalid_credential"
	CauseProfileNotFound   Cause = "profile_not_found"
	CauseProviderError     Cause = "provider_error"
	CauseInactiveAccount   Cause = "inactive_account"
	CauseMissingPermission Cause = "missing_permission"
)

// AccessDecision is the single value produced by the gate. Callers only
// ever see this decision; no resolution failure propagates past it.
type AccessDecision struct {
	Authorized bool
	Identity   *Identity
	Reason     Reason
	Cause      Cause
}

// Requirement describes the permissions an operation demands. With
// RequireAll unset, holding any listed permission suffices.
type Requirement struct {
	Permissions []authz.Permission
	RequireAll  bool
}

type identityContextKey struct{}

// ContextWithIdentity attaches the resolved identity to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity set by the gate, if any.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
