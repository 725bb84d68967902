// Package auth talks to the hosted auth provider. The service keeps no local
// user store and issues no sessions: every protected request resolves the
// caller's session token against the provider, exactly once, with no caching.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
)

// ErrUnauthenticated means the provider rejected the session token (or there
// was none to present).
var ErrUnauthenticated = errors.New("unauthenticated")

// User is the resolved caller identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// GetUser resolves the session access token into a User.
// Returns ErrUnauthenticated when the provider does not recognize the token;
// any other failure is an upstream error.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fallthrough to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	default:
		return nil, fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if body.ID == "" {
		return nil, ErrUnauthenticated
	}

	role := body.AppMetadata.Role
	if role == "" {
		role = body.Role
	}
	return &User{ID: body.ID, Email: body.Email, Role: role}, nil
}
