package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
)

func TestFetchSignedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "user-1",
			"email": "jo@example.com",
			"user_metadata": map[string]string{
				"name":      "Jo",
				"full_name": "Jo Doe",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.IdentityConfig{BaseURL: srv.URL, APIKey: "anon-key"}, zap.NewNop())

	s := c.Fetch(context.Background(), "token-123")
	assert.True(t, s.SignedIn)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "jo@example.com", s.Email)
	assert.Equal(t, "Jo", s.DisplayName)
}

func TestFetchDisplayNameFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		email    string
		want     string
	}{
		{"full name", map[string]string{"full_name": "Jo Doe"}, "jo@example.com", "Jo Doe"},
		{"email", nil, "jo@example.com", "jo@example.com"},
		{"default", nil, "", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"id":            "user-1",
					"email":         tt.email,
					"user_metadata": tt.metadata,
				})
			}))
			defer srv.Close()

			c := NewClient(config.IdentityConfig{BaseURL: srv.URL}, zap.NewNop())
			s := c.Fetch(context.Background(), "t")
			require.True(t, s.SignedIn)
			assert.Equal(t, tt.want, s.DisplayName)
		})
	}
}

func TestFetchDegradesToSignedOut(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		c := NewClient(config.IdentityConfig{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
		s := c.Fetch(context.Background(), "")
		assert.False(t, s.SignedIn)
		assert.Equal(t, "User", s.DisplayName)
	})

	t.Run("provider unconfigured", func(t *testing.T) {
		c := NewClient(config.IdentityConfig{}, zap.NewNop())
		assert.False(t, c.Fetch(context.Background(), "token").SignedIn)
	})

	t.Run("token rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(config.IdentityConfig{BaseURL: srv.URL}, zap.NewNop())
		assert.False(t, c.Fetch(context.Background(), "bad-token").SignedIn)
	})

	t.Run("provider unreachable", func(t *testing.T) {
		c := NewClient(config.IdentityConfig{BaseURL: "http://127.0.0.1:1", Timeout: 1}, zap.NewNop())
		assert.False(t, c.Fetch(context.Background(), "token").SignedIn)
	})
}
