package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider verifies credentials against the usuarios table and
// issues opaque tokens kept in Redis. It stands in for the hosted
// provider in development and tests; the resolver contract is identical.
type LocalProvider struct {
	pool   *pgxpool.Pool
	client *redis.Client
	ttl    time.Duration
}

// NewLocalProvider constructs a LocalProvider.
func NewLocalProvider(pool *pgxpool.Pool, client *redis.Client, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LocalProvider{pool: pool, client: client, ttl: ttl}
}

// Authenticate checks the password hash and issues an access token.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	var subject, hash string
	err := p.pool.QueryRow(ctx,
		`SELECT sujeto, password_hash FROM usuarios WHERE email = $1 AND eliminado_en IS NULL`,
		email).Scan(&subject, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredential
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredential
	}

	token := uuid.NewString()
	if err := p.client.Set(ctx, p.tokenKey(token), tokenValue(subject, email), p.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: store token: %v", ErrProvider, err)
	}
	return token, nil
}

// Verify resolves a previously issued token.
func (p *LocalProvider) Verify(ctx context.Context, token string) (Claims, error) {
	raw, err := p.client.Get(ctx, p.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Claims{}, ErrInvalidCredential
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	subject, email, ok := splitTokenValue(raw)
	if !ok {
		return Claims{}, ErrInvalidCredential
	}
	return Claims{Subject: subject, Email: email}, nil
}

// Revoke invalidates an issued token on logout.
func (p *LocalProvider) Revoke(ctx context.Context, token string) error {
	err := p.client.Del(ctx, p.tokenKey(token)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: revoke token: %v", ErrProvider, err)
	}
	return nil
}

func (p *LocalProvider) tokenKey(token string) string {
	return "idtoken:" + token
}

func tokenValue(subject, email string) string {
	return subject + "|" + email
}

func splitTokenValue(raw string) (subject, email string, ok bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '|' {
			return raw[:i], raw[i+1:], true
		}
	}
	return "", "", false
}

var (
	_ Verifier      = (*LocalProvider)(nil)
	_ Authenticator = (*LocalProvider)(nil)
)
