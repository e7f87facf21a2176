package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/identity"
	"github.com/telaris-erp/telaris/internal/shared"
)

type stubVerifier struct {
	claims map[string]identity.Claims
	err    error
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (identity.Claims, error) {
	if v.err != nil {
		return identity.Claims{}, v.err
	}
	claims, ok := v.claims[token]
	if !ok {
		return identity.Claims{}, identity.ErrInvalidCredential
	}
	return claims, nil
}

type stubProfiles struct {
	profiles map[string]*Identity
	err      error
}

func (s *stubProfiles) FindProfile(ctx context.Context, subject, email string) (*Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	profile, ok := s.profiles[subject]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func newTestGate(verifier identity.Verifier, profiles ProfileStore) *Gate {
	return NewGate(NewResolver(verifier, profiles, nil), nil)
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func fixtureGate() *Gate {
	verifier := &stubVerifier{claims: map[string]identity.Claims{
		"tok-admin":     {Subject: "sub-admin", Email: "admin@telaris.local"},
		"tok-cutter":    {Subject: "sub-cutter", Email: "cutter@telaris.local"},
		"tok-helper":    {Subject: "sub-helper", Email: "helper@telaris.local"},
		"tok-recep":     {Subject: "sub-recep", Email: "recep@telaris.local"},
		"tok-suspended": {Subject: "sub-susp", Email: "susp@telaris.local"},
		"tok-orphan":    {Subject: "sub-orphan", Email: "orphan@telaris.local"},
	}}
	profiles := &stubProfiles{profiles: map[string]*Identity{
		"sub-admin":  {ID: 1, Email: "admin@telaris.local", Role: authz.RoleAdministrator, Status: StatusActive},
		"sub-cutter": {ID: 2, Email: "cutter@telaris.local", Role: authz.RoleCutter, Status: StatusActive},
		"sub-helper": {ID: 3, Email: "helper@telaris.local", Role: authz.RoleHelper, Status: StatusActive},
		"sub-recep":  {ID: 4, Email: "recep@telaris.local", Role: authz.RoleReceptionist, Status: StatusActive},
		"sub-susp":   {ID: 5, Email: "susp@telaris.local", Role: authz.RoleReceptionist, Status: StatusSuspended},
	}}
	return newTestGate(verifier, profiles)
}

func TestAuthorizeAdministratorManageUsers(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest("tok-admin"), Requirement{Permissions: []authz.Permission{authz.PermManageUsers}})
	require.True(t, decision.Authorized)
	require.NotNil(t, decision.Identity)
	assert.Equal(t, int64(1), decision.Identity.ID)
	assert.Equal(t, ReasonNone, decision.Reason)
}

func TestAuthorizeCutterManageUsersForbidden(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest("tok-cutter"), Requirement{Permissions: []authz.Permission{authz.PermManageUsers}})
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonForbidden, decision.Reason)
	assert.Equal(t, CauseMissingPermission, decision.Cause)
}

func TestAuthorizeNoCredential(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest(""), Requirement{Permissions: []authz.Permission{authz.PermViewOrders}})
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonUnauthenticated, decision.Reason)
	assert.Equal(t, CauseNoCredential, decision.Cause)
}

func TestAuthorizeSuspendedAccount(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest("tok-suspended"), Requirement{Permissions: []authz.Permission{authz.PermViewOrders}})
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonForbidden, decision.Reason)
	assert.Equal(t, CauseInactiveAccount, decision.Cause)
}

func TestAuthorizeProfileNotFoundDenied(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest("tok-orphan"), Requirement{})
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonUnauthenticated, decision.Reason)
	assert.Equal(t, CauseProfileNotFound, decision.Cause)
}

func TestAuthorizeReceptionistAnyOfOrders(t *testing.T) {
	gate := fixtureGate()
	decision := gate.Authorize(bearerRequest("tok-recep"), Requirement{
		Permissions: []authz.Permission{authz.PermViewOrders, authz.PermManageOrders},
	})
	assert.True(t, decision.Authorized)
}

func TestAuthorizeFailsClosedOnLookupError(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]identity.Claims{
		"tok": {Subject: "sub", Email: "a@b.c"},
	}}
	profiles := &stubProfiles{err: errors.New("connection reset")}
	gate := newTestGate(verifier, profiles)

	decision := gate.Authorize(bearerRequest("tok"), Requirement{})
	assert.False(t, decision.Authorized)
	assert.Equal(t, ReasonUnauthenticated, decision.Reason)
	assert.Equal(t, CauseProviderError, decision.Cause)
}

func TestAuthorizeFailsClosedOnProviderError(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("timeout")}
	gate := newTestGate(verifier, &stubProfiles{})

	decision := gate.Authorize(bearerRequest("tok"), Requirement{Permissions: []authz.Permission{authz.PermViewUsers}})
	assert.False(t, decision.Authorized)
	assert.Equal(t, CauseProviderError, decision.Cause)
}

func TestAuthorizeIdempotent(t *testing.T) {
	gate := fixtureGate()
	req := Requirement{Permissions: []authz.Permission{authz.PermViewReports}}
	first := gate.Authorize(bearerRequest("tok-recep"), req)
	second := gate.Authorize(bearerRequest("tok-recep"), req)
	assert.Equal(t, first.Authorized, second.Authorized)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Cause, second.Cause)
}

func TestAPIGuardHelperViewReports(t *testing.T) {
	gate := fixtureGate()
	handler := gate.RequireAny(authz.PermViewReports)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, bearerRequest("tok-helper"))

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.JSONEq(t, `{"error": "No tienes permisos para esta acción"}`, res.Body.String())
}

func TestAPIGuardUnauthenticatedIs401(t *testing.T) {
	gate := fixtureGate()
	handler := gate.RequireAny(authz.PermViewReports)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, bearerRequest(""))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestAPIGuardAttachesIdentity(t *testing.T) {
	gate := fixtureGate()
	var seen *Identity
	handler := gate.RequireAny(authz.PermViewOrders)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, bearerRequest("tok-recep"))
	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, seen)
	assert.Equal(t, authz.RoleReceptionist, seen.Role)
}

func TestPageGuardRedirects(t *testing.T) {
	gate := fixtureGate()
	guard := gate.PageGuard(Requirement{Permissions: []authz.Permission{authz.PermViewReports}})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		token  string
		target string
	}{
		{"unauthenticated", "", LoginPath},
		{"inactive account", "tok-suspended", InactiveAccountPath},
		{"missing permission", "tok-helper", AccessDeniedPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			guard(next).ServeHTTP(res, bearerRequest(tc.token))
			assert.Equal(t, http.StatusSeeOther, res.Code)
			assert.Equal(t, tc.target, res.Header().Get("Location"))
		})
	}

	// Allowed roles pass through unchanged.
	res := httptest.NewRecorder()
	guard(next).ServeHTTP(res, bearerRequest("tok-recep"))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireAllDemandsEveryPermission(t *testing.T) {
	gate := fixtureGate()
	handler := gate.RequireAll(authz.PermViewOrders, authz.PermManageUsers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, bearerRequest("tok-recep"))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, bearerRequest("tok-admin"))
	assert.Equal(t, http.StatusOK, res.Code)
}
