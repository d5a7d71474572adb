package dashauth

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by dashauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Backend      BackendConfig
	Store        StoreConfig
	Refresh      RefreshConfig
	Routes       RouteConfig
	Subscription SubscriptionConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig defines a public type used by dashauth APIs.
//
// BackendConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackendConfig struct {
	// BaseURL of the remote auth backend, per build environment.
	BaseURL string
	// Timeout applied by the HTTP client transport. The Manager sets no
	// additional per-request deadline of its own.
	Timeout time.Duration
	// LogoutTimeout bounds the best-effort backend logout notification.
	LogoutTimeout time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by dashauth APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// RedisPrefix namespaces the four persisted keys
	// (token, refresh token, user, tenant).
	RedisPrefix string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by dashauth APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// CheckInterval is the wall-clock period of the background expiry check.
	CheckInterval time.Duration
	// RenewWithin is the low-water mark: a token with less remaining
	// lifetime than this (but still positive) is refreshed proactively.
	RenewWithin time.Duration
	// Disabled turns the background loop off; RefreshToken stays available.
	Disabled bool
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig defines a public type used by dashauth APIs.
//
// RouteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RouteConfig struct {
	HomePath  string
	LoginPath string
}

// SubscriptionConfig defines a public type used by dashauth APIs.
//
// SubscriptionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SubscriptionConfig struct {
	// Buffer is the per-subscriber channel depth. A slow subscriber whose
	// buffer is full loses the oldest pending snapshot, never the newest.
	Buffer int
}

// AuditConfig defines a public type used by dashauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by dashauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout:       10 * time.Second,
			LogoutTimeout: 3 * time.Second,
		},
		Store: StoreConfig{
			RedisPrefix: "dashauth",
		},
		Refresh: RefreshConfig{
			CheckInterval: 5 * time.Minute,
			RenewWithin:   10 * time.Minute,
		},
		Routes: RouteConfig{
			HomePath:  "/",
			LoginPath: "/login",
		},
		Subscription: SubscriptionConfig{
			Buffer: 8,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.RedisPrefix) == "" {
		return errors.New("store redis prefix must not be empty")
	}
	if strings.ContainsAny(c.Store.RedisPrefix, " \t\n") {
		return errors.New("store redis prefix must not contain whitespace")
	}
	if !c.Refresh.Disabled {
		if c.Refresh.CheckInterval <= 0 {
			return errors.New("refresh check interval must be positive")
		}
		if c.Refresh.RenewWithin <= 0 {
			return errors.New("refresh renew-within must be positive")
		}
		if c.Refresh.RenewWithin <= c.Refresh.CheckInterval {
			return errors.New("refresh renew-within must exceed the check interval")
		}
	}
	if c.Backend.Timeout < 0 || c.Backend.LogoutTimeout < 0 {
		return errors.New("backend timeouts must not be negative")
	}
	if c.Subscription.Buffer <= 0 {
		return errors.New("subscription buffer must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	if c.Routes.HomePath == "" || c.Routes.LoginPath == "" {
		return errors.New("route paths must not be empty")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone keeps Build inputs
	// isolated from later caller mutation.
	return cfg
}
