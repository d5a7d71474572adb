package dashauth

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/zcscompany/dashauth/permission"
)

// TenantTier defines a public type used by dashauth APIs.
//
// TenantTier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TenantTier string

const (
	// TierFree is an exported constant or variable used by the session manager.
	TierFree TenantTier = "free"
	// TierProfessional is an exported constant or variable used by the session manager.
	TierProfessional TenantTier = "professional"
	// TierEnterprise is an exported constant or variable used by the session manager.
	TierEnterprise TenantTier = "enterprise"
)

// Tenant is an isolated customer context supplied by the auth backend.
// It determines feature tier and data scope and is read-only on the client.
type Tenant struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Tier          TenantTier `json:"tier"`
	Features      []string   `json:"features,omitempty"`
	Active        bool       `json:"active"`
	UserCount     int        `json:"user_count,omitempty"`
	DocumentCount int        `json:"document_count,omitempty"`
}

// HasFeature reports whether the tenant's tier enables the named feature.
func (t *Tenant) HasFeature(name string) bool {
	if t == nil {
		return false
	}
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}

// User is the authenticated principal snapshot. It is created on successful
// login and immutable except on tenant switch, which replaces the tenant
// fields only.
type User struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Role             permission.Role `json:"role"`
	TenantID         string          `json:"tenant_id"`
	TenantName       string          `json:"tenant_name"`
	TenantTier       TenantTier      `json:"tenant_tier"`
	Permissions      permission.Set  `json:"permissions"`
	SessionExpiresAt time.Time       `json:"session_expires_at"`
	LastLogin        time.Time       `json:"last_login,omitempty"`
}

// Phase defines a public type used by dashauth APIs.
//
// Phase instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Phase uint8

const (
	// PhaseUnauthenticated is an exported constant or variable used by the session manager.
	PhaseUnauthenticated Phase = iota
	// PhaseAuthenticating is an exported constant or variable used by the session manager.
	PhaseAuthenticating
	// PhaseAuthenticated is an exported constant or variable used by the session manager.
	PhaseAuthenticated
	// PhaseTenantSelection is an exported constant or variable used by the session manager.
	PhaseTenantSelection
)

// String returns the lowercase phase name used in audit events.
func (p Phase) String() string {
	switch p {
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseTenantSelection:
		return "tenant_selection"
	default:
		return "unauthenticated"
	}
}

// Session is the observable authentication state snapshot. Snapshots are
// value copies: mutating a received Session never affects the Manager.
type Session struct {
	Phase         Phase
	Authenticated bool
	User          *User
	Tenants       []Tenant
	CurrentTenant *Tenant
	Loading       bool
	Error         string
}

// LoginResult is returned by [Manager.Login] and [Manager.LoginWithTenant].
// Exactly one of User or TenantSelection is meaningful: when the principal
// resolves to multiple tenants, TenantSelection is true and Tenants carries
// the choices.
type LoginResult struct {
	User            *User
	Tenants         []Tenant
	TenantSelection bool
	RedirectTo      string
}

// BackendSession is the payload a [Backend] returns on successful login:
// the issued credentials plus the user snapshot derived from them.
type BackendSession struct {
	AccessToken  string
	RefreshToken string
	User         User
	Tenants      []Tenant
}

// LoginRequest is the input for [Backend.Login]. TenantID is an optional
// hint for principals with access to more than one tenant.
type LoginRequest struct {
	Email    string
	Password string
	TenantID string
}

// Backend is the remote auth collaborator contract. The HTTP implementation
// lives in authclient/; an in-process fixture-table mock ships alongside it
// for development and tests. Implementations must map failures onto the
// dashauth sentinel errors (ErrInvalidCredentials, ErrMultipleTenants,
// ErrSwitchRejected, ErrBackendUnavailable).
type Backend interface {
	Login(ctx context.Context, req LoginRequest) (*BackendSession, error)
	Logout(ctx context.Context, userID, tenantID string) error
	SwitchTenant(ctx context.Context, userID, tenantID string) (*Tenant, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	UserTenants(ctx context.Context, email string) ([]Tenant, error)
}

// AuditEvent defines a public type used by dashauth APIs.
//
// AuditEvent instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	TenantID  string            `json:"tenant_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// AuditSink receives session lifecycle events from the async dispatcher.
// Emit must not block for long; the dispatcher buffer absorbs bursts.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink defines a public type used by dashauth APIs.
//
// NoOpSink instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// JSONSink writes one JSON-encoded audit event per line to the wrapped writer.
type JSONSink struct {
	W io.Writer
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s JSONSink) Emit(_ context.Context, event AuditEvent) {
	if s.W == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = s.W.Write(data)
}
