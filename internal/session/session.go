// Package session fetches display identity from the configured
// identity provider. Identity is cosmetic here: every record operation
// works without a signed-in user, so failures degrade to a signed-out
// session instead of erroring.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	apperrors "github.com/carescan/carescan/internal/errors"
)

// Session is the display identity for the current request.
type Session struct {
	SignedIn    bool   `json:"signedIn"`
	UserID      string `json:"userId,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
}

// SignedOut is the session every request starts from.
func SignedOut() Session {
	return Session{SignedIn: false, DisplayName: "User"}
}

// Client talks to the identity provider's user endpoint.
type Client struct {
	cfg    config.IdentityConfig
	client *http.Client
	logger *zap.Logger
}

// NewClient creates an identity client. Each Client is constructed
// explicitly and passed where needed; there is no package-level
// singleton.
func NewClient(cfg config.IdentityConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: logger,
	}
}

// Fetch resolves the session for a bearer token. An empty token, an
// unconfigured provider, or any provider fault yields the signed-out
// session; only the signed-out fallback is ever degraded to.
func (c *Client) Fetch(ctx context.Context, token string) Session {
	if token == "" || c.cfg.BaseURL == "" {
		return SignedOut()
	}

	user, err := c.fetchUser(ctx, token)
	if err != nil {
		c.logger.Debug("identity lookup failed, treating as signed out",
			zap.Error(err))
		return SignedOut()
	}

	name := user.Metadata.Name
	if name == "" {
		name = user.Metadata.FullName
	}
	if name == "" {
		name = user.Email
	}
	if name == "" {
		name = "User"
	}

	return Session{
		SignedIn:    true,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: name,
	}
}

type providerUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (c *Client) fetchUser(ctx context.Context, token string) (*providerUser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionFetch.Code, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionFetch.Code, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.New(apperrors.ErrUnauthorized.Code, "token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.New(apperrors.ErrSessionFetch.Code,
			fmt.Sprintf("identity provider returned %d: %s", resp.StatusCode, string(body)))
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSessionFetch.Code, "failed to decode user")
	}
	return &user, nil
}
