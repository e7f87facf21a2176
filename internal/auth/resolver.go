package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/telaris-erp/telaris/internal/identity"
	"github.com/telaris-erp/telaris/internal/shared"
)

// Resolution is the outcome of resolving a request credential.
type Resolution struct {
	Identity *Identity
	Cause    Cause
}

// Resolver turns a request credential into an Identity. The credential
// is an opaque bearer token, taken from the Authorization header or
// from the cookie session, verified against the identity provider and
// joined with the stored profile row. Role and status are read from the
// profile at resolution time, never from the credential.
type Resolver struct {
	verifier identity.Verifier
	profiles ProfileStore
	logger   *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(verifier identity.Verifier, profiles ProfileStore, logger *slog.Logger) *Resolver {
	return &Resolver{verifier: verifier, profiles: profiles, logger: logger}
}

// Resolve produces the request identity or a definite denial cause.
// Provider and lookup failures collapse into a denial, never into an
// authenticated identity.
func (rs *Resolver) Resolve(r *http.Request) Resolution {
	token := credentialFromRequest(r)
	if token == "" {
		return Resolution{Cause: CauseNoCredential}
	}
	return rs.ResolveToken(r.Context(), token)
}

// ResolveToken verifies an already-extracted credential.
func (rs *Resolver) ResolveToken(ctx context.Context, token string) Resolution {
	claims, err := rs.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredential) {
			return Resolution{Cause: CauseInvalidCredential}
		}
		if rs.logger != nil {
			rs.logger.Error("verify credential", slog.Any("error", err))
		}
		return Resolution{Cause: CauseProviderError}
	}

	profile, err := rs.profiles.FindProfile(ctx, claims.Subject, claims.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if rs.logger != nil {
				rs.logger.Warn("credential verified but profile missing", slog.String("subject", claims.Subject))
			}
			return Resolution{Cause: CauseProfileNotFound}
		}
		if rs.logger != nil {
			rs.logger.Error("profile lookup", slog.Any("error", err))
		}
		return Resolution{Cause: CauseProviderError}
	}

	return Resolution{Identity: profile}
}

// credentialFromRequest extracts the bearer token. API clients send an
// Authorization header; browser flows carry it inside the session.
func credentialFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.AccessToken()
	}
	return ""
}
