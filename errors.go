package dashauth

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session manager.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMultipleTenants is an exported constant or variable used by the session manager.
	//
	// It is a soft failure: the principal resolved to more than one tenant and
	// the caller must re-submit the login with an explicit tenant choice.
	ErrMultipleTenants = errors.New("multiple tenants available")
	// ErrBackendUnavailable is an exported constant or variable used by the session manager.
	ErrBackendUnavailable = errors.New("auth backend unavailable")
	// ErrNotAuthenticated is an exported constant or variable used by the session manager.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken is an exported constant or variable used by the session manager.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrSwitchRejected is an exported constant or variable used by the session manager.
	ErrSwitchRejected = errors.New("tenant switch rejected")
	// ErrTenantUnknown is an exported constant or variable used by the session manager.
	ErrTenantUnknown = errors.New("unknown tenant")
	// ErrLoginSuperseded is an exported constant or variable used by the session manager.
	//
	// Returned when an async login or refresh completion carries a stale
	// session epoch and is discarded rather than applied.
	ErrLoginSuperseded = errors.New("login superseded by a newer session transition")
	// ErrStoreUnavailable is an exported constant or variable used by the session manager.
	ErrStoreUnavailable = errors.New("persisted state store unavailable")
	// ErrManagerNotReady is an exported constant or variable used by the session manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrManagerClosed is an exported constant or variable used by the session manager.
	ErrManagerClosed = errors.New("manager closed")
)

// BackendError carries the auth backend's HTTP status and user-visible
// message alongside the sentinel it maps to. The Manager surfaces Message
// verbatim in Session.Error when present.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "auth backend error"
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *BackendError) Unwrap() error {
	return e.Err
}
