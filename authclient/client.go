package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	dashauth "github.com/zcscompany/dashauth"
	"github.com/zcscompany/dashauth/permission"
)

const (
	loginPath       = "/auth/login"
	logoutPath      = "/auth/logout"
	switchPath      = "/auth/switch-tenant"
	refreshPath     = "/auth/refresh"
	tenantsPath     = "/auth/tenants"
	requestIDHeader = "X-Request-ID"
)

// Client calls the remote auth backend over HTTP. It implements
// [dashauth.Backend] and maps HTTP outcomes onto the dashauth sentinel
// errors: 401 → ErrInvalidCredentials, 409 → ErrMultipleTenants, transport
// failure → ErrBackendUnavailable.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client for the given base URL. timeout bounds every
// request at the transport level; the session manager adds no deadline of
// its own.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type userPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	TenantID    string   `json:"tenant_id"`
	TenantName  string   `json:"tenant_name"`
	TenantTier  string   `json:"tenant_tier"`
	Permissions []string `json:"permissions"`
	LastLogin   string   `json:"last_login,omitempty"`
}

type tenantPayload struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Tier          string   `json:"tier"`
	Features      []string `json:"features,omitempty"`
	Active        bool     `json:"active"`
	UserCount     int      `json:"user_count,omitempty"`
	DocumentCount int      `json:"document_count,omitempty"`
}

type loginResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
	User         userPayload     `json:"user"`
	Tenants      []tenantPayload `json:"tenants"`
}

type errorResponse struct {
	Message string          `json:"message"`
	Tenants []tenantPayload `json:"tenants,omitempty"`
}

type switchResponse struct {
	Success bool          `json:"success"`
	Tenant  tenantPayload `json:"tenant"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, req dashauth.LoginRequest) (*dashauth.BackendSession, error) {
	body := map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}
	if req.TenantID != "" {
		body["tenant_id"] = req.TenantID
	}

	resp, err := c.post(ctx, loginPath, body)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &dashauth.BackendError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
			Err:     dashauth.ErrInvalidCredentials,
		}
	case http.StatusConflict:
		return nil, &dashauth.BackendError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
			Err:     dashauth.ErrMultipleTenants,
		}
	default:
		return nil, unexpectedStatus(loginPath, resp)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode login response: %v", dashauth.ErrBackendUnavailable, err)
	}
	if payload.Token == "" {
		return nil, fmt.Errorf("%w: login response missing token", dashauth.ErrBackendUnavailable)
	}

	session := &dashauth.BackendSession{
		AccessToken:  payload.Token,
		RefreshToken: payload.RefreshToken,
		User:         toUser(payload.User),
		Tenants:      toTenants(payload.Tenants),
	}

	return session, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context, userID, tenantID string) error {
	resp, err := c.post(ctx, logoutPath, map[string]string{
		"user_id":   userID,
		"tenant_id": tenantID,
	})
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	// Fire-and-forget: any 2xx is success, everything else is reported but
	// never blocks the local logout.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unexpectedStatus(logoutPath, resp)
	}
	return nil
}

// SwitchTenant describes the switchtenant operation and its observable behavior.
//
// SwitchTenant may return an error when input validation, dependency calls, or security checks fail.
// SwitchTenant does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) SwitchTenant(ctx context.Context, userID, tenantID string) (*dashauth.Tenant, error) {
	resp, err := c.post(ctx, switchPath, map[string]string{
		"user_id":   userID,
		"tenant_id": tenantID,
	})
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound {
		return nil, &dashauth.BackendError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
			Err:     dashauth.ErrSwitchRejected,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(switchPath, resp)
	}

	var payload switchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode switch response: %v", dashauth.ErrBackendUnavailable, err)
	}
	if !payload.Success {
		return nil, dashauth.ErrSwitchRejected
	}

	tenant := toTenant(payload.Tenant)
	return &tenant, nil
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", dashauth.ErrNoRefreshToken
	}

	resp, err := c.post(ctx, refreshPath, map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return "", &dashauth.BackendError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
			Err:     dashauth.ErrNoRefreshToken,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", unexpectedStatus(refreshPath, resp)
	}

	var payload refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode refresh response: %v", dashauth.ErrBackendUnavailable, err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("%w: refresh response missing token", dashauth.ErrBackendUnavailable)
	}

	return payload.Token, nil
}

// UserTenants describes the usertenants operation and its observable behavior.
//
// UserTenants may return an error when input validation, dependency calls, or security checks fail.
// UserTenants does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) UserTenants(ctx context.Context, email string) ([]dashauth.Tenant, error) {
	endpoint := c.baseURL + tenantsPath + "?email=" + url.QueryEscape(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dashauth.ErrBackendUnavailable, err)
	}
	c.setHeaders(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dashauth.ErrBackendUnavailable, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(tenantsPath, resp)
	}

	var payload []tenantPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode tenants response: %v", dashauth.ErrBackendUnavailable, err)
	}

	return toTenants(payload), nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s request: %v", dashauth.ErrBackendUnavailable, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dashauth.ErrBackendUnavailable, err)
	}
	c.setHeaders(ctx, req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dashauth.ErrBackendUnavailable, err)
	}
	return resp, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	requestID := dashauth.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
}

func unexpectedStatus(path string, resp *http.Response) error {
	return &dashauth.BackendError{
		Status:  resp.StatusCode,
		Message: readErrorMessage(resp.Body),
		Err:     fmt.Errorf("%w: %s returned status %d", dashauth.ErrBackendUnavailable, path, resp.StatusCode),
	}
}

func readErrorMessage(body io.Reader) string {
	var payload errorResponse
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}

func toUser(p userPayload) dashauth.User {
	user := dashauth.User{
		ID:          p.ID,
		Email:       p.Email,
		Role:        permission.Role(p.Role),
		TenantID:    p.TenantID,
		TenantName:  p.TenantName,
		TenantTier:  dashauth.TenantTier(p.TenantTier),
		Permissions: permission.NewSet(p.Permissions...),
	}
	if p.LastLogin != "" {
		if t, err := time.Parse(time.RFC3339, p.LastLogin); err == nil {
			user.LastLogin = t
		}
	}
	return user
}

func toTenant(p tenantPayload) dashauth.Tenant {
	return dashauth.Tenant{
		ID:            p.ID,
		Name:          p.Name,
		Tier:          dashauth.TenantTier(p.Tier),
		Features:      p.Features,
		Active:        p.Active,
		UserCount:     p.UserCount,
		DocumentCount: p.DocumentCount,
	}
}

func toTenants(payloads []tenantPayload) []dashauth.Tenant {
	if len(payloads) == 0 {
		return nil
	}
	tenants := make([]dashauth.Tenant, 0, len(payloads))
	for _, p := range payloads {
		tenants = append(tenants, toTenant(p))
	}
	return tenants
}
