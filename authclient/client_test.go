package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashauth "github.com/zcscompany/dashauth"
)

func TestLoginSuccess(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotRequestID = r.Header.Get("X-Request-ID")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@zcscompany.com", body["email"])
		assert.Equal(t, "password123", body["password"])
		assert.NotContains(t, body, "tenant_id")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{
			Token:        "access-1",
			RefreshToken: "refresh-1",
			User: userPayload{
				ID:          "user-1",
				Email:       "admin@zcscompany.com",
				Role:        "admin",
				TenantID:    "zcs-hq",
				TenantName:  "ZCS Company",
				TenantTier:  "enterprise",
				Permissions: []string{"documents.read", "users.manage"},
				LastLogin:   "2026-08-20T09:30:00Z",
			},
			Tenants: []tenantPayload{
				{ID: "zcs-hq", Name: "ZCS Company", Tier: "enterprise", Active: true, UserCount: 42},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	session, err := client.Login(context.Background(), dashauth.LoginRequest{
		Email:    "admin@zcscompany.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "access-1", session.AccessToken)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, dashauth.TierEnterprise, session.User.TenantTier)
	assert.True(t, session.User.Permissions.Has("users.manage"))
	assert.False(t, session.User.LastLogin.IsZero())
	require.Len(t, session.Tenants, 1)
	assert.Equal(t, "zcs-hq", session.Tenants[0].ID)
	assert.NotEmpty(t, gotRequestID)
}

func TestLoginPropagatesRequestID(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	ctx := dashauth.WithRequestID(context.Background(), "req-777")
	_, err := client.Login(ctx, dashauth.LoginRequest{Email: "a", Password: "b"})

	require.Error(t, err)
	assert.Equal(t, "req-777", gotRequestID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(errorResponse{Message: "Invalid email or password"})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Login(context.Background(), dashauth.LoginRequest{Email: "x", Password: "wrong"})

	require.ErrorIs(t, err, dashauth.ErrInvalidCredentials)

	var backendErr *dashauth.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusUnauthorized, backendErr.Status)
	assert.Equal(t, "Invalid email or password", backendErr.Message)
}

func TestLoginMultipleTenants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{Message: "tenant selection required"})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Login(context.Background(), dashauth.LoginRequest{Email: "analyst@zcscompany.com", Password: "password123"})

	require.ErrorIs(t, err, dashauth.ErrMultipleTenants)
}

func TestLoginWithTenantHintSendsTenantID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "zcs-labs", body["tenant_id"])

		_ = json.NewEncoder(w).Encode(loginResponse{
			Token: "access-2",
			User:  userPayload{ID: "user-2", TenantID: "zcs-labs"},
		})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	session, err := client.Login(context.Background(), dashauth.LoginRequest{
		Email:    "analyst@zcscompany.com",
		Password: "password123",
		TenantID: "zcs-labs",
	})
	require.NoError(t, err)
	assert.Equal(t, "zcs-labs", session.User.TenantID)
}

func TestLoginTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	client := New(server.URL, time.Second)
	_, err := client.Login(context.Background(), dashauth.LoginRequest{Email: "a", Password: "b"})

	require.ErrorIs(t, err, dashauth.ErrBackendUnavailable)
}

func TestLoginMissingTokenInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(loginResponse{})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Login(context.Background(), dashauth.LoginRequest{Email: "a", Password: "b"})

	require.ErrorIs(t, err, dashauth.ErrBackendUnavailable)
}

func TestLogout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-1", body["user_id"])
		assert.Equal(t, "zcs-hq", body["tenant_id"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	require.NoError(t, client.Logout(context.Background(), "user-1", "zcs-hq"))
}

func TestLogoutServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	err := client.Logout(context.Background(), "user-1", "zcs-hq")
	require.Error(t, err)
}

func TestSwitchTenantSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/switch-tenant", r.URL.Path)
		_ = json.NewEncoder(w).Encode(switchResponse{
			Success: true,
			Tenant:  tenantPayload{ID: "zcs-labs", Name: "ZCS Labs", Tier: "professional", Active: true},
		})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	tenant, err := client.SwitchTenant(context.Background(), "user-1", "zcs-labs")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, "zcs-labs", tenant.ID)
	assert.Equal(t, dashauth.TierProfessional, tenant.Tier)
}

func TestSwitchTenantRejected(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "success flag false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(switchResponse{Success: false})
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := New(server.URL, 5*time.Second)
			_, err := client.SwitchTenant(context.Background(), "user-1", "nope")
			require.ErrorIs(t, err, dashauth.ErrSwitchRejected)
		})
	}
}

func TestRefreshSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh_token"])

		_ = json.NewEncoder(w).Encode(refreshResponse{Token: "access-2"})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	newToken, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", newToken)
}

func TestRefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Refresh(context.Background(), "stale")
	require.ErrorIs(t, err, dashauth.ErrNoRefreshToken)
}

func TestRefreshEmptyTokenShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Refresh(context.Background(), "")
	require.ErrorIs(t, err, dashauth.ErrNoRefreshToken)
	assert.False(t, called, "no request should leave the client without a refresh token")
}

func TestUserTenants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/auth/tenants", r.URL.Path)
		assert.Equal(t, "analyst@zcscompany.com", r.URL.Query().Get("email"))

		_ = json.NewEncoder(w).Encode([]tenantPayload{
			{ID: "zcs-hq", Name: "ZCS Company", Tier: "enterprise", Active: true},
			{ID: "zcs-labs", Name: "ZCS Labs", Tier: "professional", Active: true},
		})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	tenants, err := client.UserTenants(context.Background(), "analyst@zcscompany.com")
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "zcs-labs", tenants[1].ID)
}

func TestContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels r.Context(); otherwise Close deadlocks on this handler.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(server.URL, 30*time.Second)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Login(ctx, dashauth.LoginRequest{Email: "a", Password: "b"})
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, errors.Is(err, dashauth.ErrBackendUnavailable))
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return after cancellation")
	}
}
