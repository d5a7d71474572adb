package authclient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	dashauth "github.com/zcscompany/dashauth"
	"github.com/zcscompany/dashauth/permission"
	"github.com/zcscompany/dashauth/token"
)

// mockSigningKey signs the fixture tokens. The decoder never verifies
// signatures, so the key only has to be stable, not secret.
var mockSigningKey = []byte("dashauth-mock-fixtures")

// Fixture is one mock account: a credential pair plus the tenants the
// principal may log into. More than one tenant triggers the
// tenant-selection flow unless the login carries a tenant hint.
type Fixture struct {
	Email       string
	Password    string
	Role        permission.Role
	Permissions []string
	Tenants     []dashauth.Tenant
}

// Mock is an in-process stand-in for the auth backend. It resolves logins
// against a fixture table after a fixed delay, mints decodable (unsigned
// trust) tokens, and tracks issued refresh tokens so Refresh behaves like
// the real endpoint. Safe for concurrent use.
type Mock struct {
	// Delay is the simulated network latency applied to every call.
	Delay time.Duration
	// TokenTTL is the lifetime embedded in minted access tokens.
	TokenTTL time.Duration

	mu       sync.Mutex
	fixtures map[string]Fixture
	refresh  map[string]string // refresh token -> user email
	logouts  int
}

// NewMock creates a Mock pre-seeded with the standard ZCS demo accounts:
//
//	admin@zcscompany.com   / password123 — admin on the enterprise tenant
//	analyst@zcscompany.com / password123 — analyst with two tenants
//	viewer@zcscompany.com  / password123 — viewer on the free tenant
func NewMock() *Mock {
	m := &Mock{
		Delay:    200 * time.Millisecond,
		TokenTTL: time.Hour,
		fixtures: make(map[string]Fixture),
		refresh:  make(map[string]string),
	}

	zcsHQ := dashauth.Tenant{
		ID:            "zcs-hq",
		Name:          "ZCS Company",
		Tier:          dashauth.TierEnterprise,
		Features:      []string{"documents", "queries", "csv-analysis", "faq", "analytics", "export", "security"},
		Active:        true,
		UserCount:     42,
		DocumentCount: 1280,
	}
	zcsLabs := dashauth.Tenant{
		ID:            "zcs-labs",
		Name:          "ZCS Labs",
		Tier:          dashauth.TierProfessional,
		Features:      []string{"documents", "queries", "csv-analysis", "analytics"},
		Active:        true,
		UserCount:     7,
		DocumentCount: 96,
	}
	zcsTrial := dashauth.Tenant{
		ID:       "zcs-trial",
		Name:     "ZCS Trial",
		Tier:     dashauth.TierFree,
		Features: []string{"documents", "queries"},
		Active:   true,
	}

	m.AddFixture(Fixture{
		Email:    "admin@zcscompany.com",
		Password: "password123",
		Role:     permission.RoleAdmin,
		Permissions: []string{
			"documents.read", "documents.upload", "queries.run", "csv.analyze",
			"faq.generate", "analytics.view", "exports.create",
			"security.manage", "users.manage",
		},
		Tenants: []dashauth.Tenant{zcsHQ},
	})
	m.AddFixture(Fixture{
		Email:    "analyst@zcscompany.com",
		Password: "password123",
		Role:     permission.RoleAnalyst,
		Permissions: []string{
			"documents.read", "documents.upload", "queries.run", "csv.analyze",
			"faq.generate", "analytics.view", "exports.create",
		},
		Tenants: []dashauth.Tenant{zcsHQ, zcsLabs},
	})
	m.AddFixture(Fixture{
		Email:       "viewer@zcscompany.com",
		Password:    "password123",
		Role:        permission.RoleViewer,
		Permissions: []string{"documents.read", "queries.run"},
		Tenants:     []dashauth.Tenant{zcsTrial},
	})

	return m
}

// AddFixture registers (or replaces) a mock account.
func (m *Mock) AddFixture(f Fixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures[f.Email] = f
}

// Logouts returns how many logout notifications the mock received.
func (m *Mock) Logouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logouts
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Mock) Login(ctx context.Context, req dashauth.LoginRequest) (*dashauth.BackendSession, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fixture, ok := m.fixtures[req.Email]
	if !ok || fixture.Password != req.Password {
		return nil, dashauth.ErrInvalidCredentials
	}

	tenant, err := pickTenant(fixture.Tenants, req.TenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	access, err := token.Sign(token.Claims{
		Subject:     userIDFor(req.Email),
		Email:       fixture.Email,
		Role:        string(fixture.Role),
		TenantID:    tenant.ID,
		TenantName:  tenant.Name,
		TenantTier:  string(tenant.Tier),
		Permissions: fixture.Permissions,
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.TokenTTL),
	}, mockSigningKey)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.NewString()
	m.refresh[refreshToken] = fixture.Email

	session := &dashauth.BackendSession{
		AccessToken:  access,
		RefreshToken: refreshToken,
		User: dashauth.User{
			ID:          userIDFor(req.Email),
			Email:       fixture.Email,
			Role:        fixture.Role,
			TenantID:    tenant.ID,
			TenantName:  tenant.Name,
			TenantTier:  tenant.Tier,
			Permissions: permission.NewSet(fixture.Permissions...),
			LastLogin:   now,
		},
		Tenants: append([]dashauth.Tenant(nil), fixture.Tenants...),
	}

	return session, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Mock) Logout(ctx context.Context, userID, tenantID string) error {
	if err := m.sleep(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.logouts++
	return nil
}

// SwitchTenant describes the switchtenant operation and its observable behavior.
//
// SwitchTenant may return an error when input validation, dependency calls, or security checks fail.
// SwitchTenant does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Mock) SwitchTenant(ctx context.Context, userID, tenantID string) (*dashauth.Tenant, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, fixture := range m.fixtures {
		if userIDFor(fixture.Email) != userID {
			continue
		}
		for _, tenant := range fixture.Tenants {
			if tenant.ID == tenantID {
				t := tenant
				return &t, nil
			}
		}
		return nil, dashauth.ErrSwitchRejected
	}

	return nil, dashauth.ErrSwitchRejected
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Mock) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if err := m.sleep(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.refresh[refreshToken]
	if !ok {
		return "", dashauth.ErrNoRefreshToken
	}
	fixture := m.fixtures[email]
	tenant := fixture.Tenants[0]

	now := time.Now()
	return token.Sign(token.Claims{
		Subject:     userIDFor(email),
		Email:       email,
		Role:        string(fixture.Role),
		TenantID:    tenant.ID,
		TenantName:  tenant.Name,
		TenantTier:  string(tenant.Tier),
		Permissions: fixture.Permissions,
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.TokenTTL),
	}, mockSigningKey)
}

// UserTenants describes the usertenants operation and its observable behavior.
//
// UserTenants may return an error when input validation, dependency calls, or security checks fail.
// UserTenants does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Mock) UserTenants(ctx context.Context, email string) ([]dashauth.Tenant, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fixture, ok := m.fixtures[email]
	if !ok {
		return nil, nil
	}
	return append([]dashauth.Tenant(nil), fixture.Tenants...), nil
}

func (m *Mock) sleep(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pickTenant(tenants []dashauth.Tenant, hint string) (dashauth.Tenant, error) {
	if hint != "" {
		for _, t := range tenants {
			if t.ID == hint {
				return t, nil
			}
		}
		return dashauth.Tenant{}, dashauth.ErrTenantUnknown
	}
	if len(tenants) > 1 {
		return dashauth.Tenant{}, dashauth.ErrMultipleTenants
	}
	if len(tenants) == 0 {
		return dashauth.Tenant{}, dashauth.ErrInvalidCredentials
	}
	return tenants[0], nil
}

func userIDFor(email string) string {
	return "user-" + email
}
