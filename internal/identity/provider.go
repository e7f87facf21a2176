package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProviderClient talks to the hosted identity service over its REST
// endpoints: token verification returns the subject claims, and the
// password grant issues access tokens for the login flow.
type ProviderClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewProviderClient constructs a client for the given project endpoint.
func NewProviderClient(baseURL, apiKey string, client *http.Client) *ProviderClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ProviderClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves the token into verified claims.
func (c *ProviderClient) Verify(ctx context.Context, token string) (Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: build request: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		var user providerUser
		if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
			return Claims{}, fmt.Errorf("%w: decode user: %v", ErrProvider, err)
		}
		if user.ID == "" {
			return Claims{}, fmt.Errorf("%w: empty subject", ErrProvider)
		}
		return Claims{Subject: user.ID, Email: user.Email}, nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return Claims{}, ErrInvalidCredential
	default:
		return Claims{}, fmt.Errorf("%w: status %d", ErrProvider, res.StatusCode)
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate performs the password grant and returns the access token.
func (c *ProviderClient) Authenticate(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("%w: encode grant: %v", ErrProvider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		var tok tokenResponse
		if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
			return "", fmt.Errorf("%w: decode token: %v", ErrProvider, err)
		}
		if tok.AccessToken == "" {
			return "", fmt.Errorf("%w: empty access token", ErrProvider)
		}
		return tok.AccessToken, nil
	case res.StatusCode == http.StatusBadRequest, res.StatusCode == http.StatusUnauthorized:
		return "", ErrInvalidCredential
	default:
		return "", fmt.Errorf("%w: status %d", ErrProvider, res.StatusCode)
	}
}

var (
	_ Verifier      = (*ProviderClient)(nil)
	_ Authenticator = (*ProviderClient)(nil)
)
