package internaldefs

import (
	dashauth "github.com/zcscompany/dashauth"
)

// CounterDef defines a public type used by dashauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by dashauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: dashauth.MetricLoginSuccess, Name: "dashauth_login_success_total", Help: "Successful login attempts."},
	{ID: dashauth.MetricLoginFailure, Name: "dashauth_login_failure_total", Help: "Failed login attempts."},
	{ID: dashauth.MetricTenantSelectionPending, Name: "dashauth_tenant_selection_pending_total", Help: "Logins that stopped in tenant selection."},
	{ID: dashauth.MetricSessionRestored, Name: "dashauth_session_restored_total", Help: "Sessions restored from persisted state."},
	{ID: dashauth.MetricSessionExpired, Name: "dashauth_session_expired_total", Help: "Persisted or live sessions discarded as expired."},
	{ID: dashauth.MetricRefreshSuccess, Name: "dashauth_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: dashauth.MetricRefreshFailure, Name: "dashauth_refresh_failure_total", Help: "Failed token refresh operations."},
	{ID: dashauth.MetricForcedLogout, Name: "dashauth_forced_logout_total", Help: "Logouts forced by refresh failure or expiry."},
	{ID: dashauth.MetricLogout, Name: "dashauth_logout_total", Help: "User-initiated logout operations."},
	{ID: dashauth.MetricTenantSwitch, Name: "dashauth_tenant_switch_total", Help: "Successful tenant switches."},
	{ID: dashauth.MetricTenantSwitchRejected, Name: "dashauth_tenant_switch_rejected_total", Help: "Tenant switches rejected by the backend."},
	{ID: dashauth.MetricStaleCompletionDropped, Name: "dashauth_stale_completion_dropped_total", Help: "Async completions discarded for belonging to a superseded session epoch."},
	{ID: dashauth.MetricSubscriberDropped, Name: "dashauth_subscriber_dropped_total", Help: "Session snapshots dropped on saturated subscriber channels."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: dashauth.MetricLoginLatency, Name: "dashauth_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
