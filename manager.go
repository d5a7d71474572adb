package dashauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zcscompany/dashauth/permission"
	"github.com/zcscompany/dashauth/store"
	"github.com/zcscompany/dashauth/token"
)

// Manager defines a public type used by dashauth APIs.
//
// Manager is the single authority over authentication state: login, logout,
// tenant switching, token refresh, and permission/role queries. It is the
// sole writer of the persisted auth keys. All methods are safe for
// concurrent use after [Builder.Build]; state mutations are serialized and
// guarded by a session epoch so stale async completions are discarded.
type Manager struct {
	config  Config
	backend Backend
	store   *store.Store
	decoder *token.Decoder
	audit   *auditDispatcher
	metrics *Metrics

	mu           sync.Mutex
	sess         Session
	accessToken  string
	refreshToken string
	epoch        uint64
	pendingEmail string
	subscribers  map[uint64]chan Session
	nextSubID    uint64
	initialized  bool
	closed       bool

	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

func (m *Manager) lock()   { m.mu.Lock() }
func (m *Manager) unlock() { m.mu.Unlock() }

// Initialize rehydrates the session from persisted storage and starts the
// background refresh loop. A persisted token whose embedded expiry is in
// the future restores the authenticated session; anything else — missing,
// expired, or undecodable — clears all persisted keys and leaves the
// session unauthenticated. Decode failures are never surfaced as errors;
// only store transport problems are.
func (m *Manager) Initialize(ctx context.Context) (Session, error) {
	m.lock()
	if m.closed {
		snap := m.snapshotLocked()
		m.unlock()
		return snap, ErrManagerClosed
	}
	if m.initialized {
		snap := m.snapshotLocked()
		m.unlock()
		return snap, nil
	}
	m.initialized = true

	state, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrEmpty):
		// Fresh start; nothing to restore.
	case err != nil:
		m.startRefreshLoopLocked()
		snap := m.snapshotLocked()
		m.unlock()
		return snap, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		m.restoreLocked(ctx, state)
	}

	m.startRefreshLoopLocked()
	snap := m.snapshotLocked()
	m.unlock()
	return snap, nil
}

func (m *Manager) restoreLocked(ctx context.Context, state store.State) {
	expiry, decodeErr := m.decoder.ExpiresAt(state.Token)

	var user User
	var tenant Tenant
	valid := decodeErr == nil && expiry.After(time.Now())
	if valid {
		if err := json.Unmarshal(state.User, &user); err != nil {
			valid = false
		}
	}
	if valid {
		if err := json.Unmarshal(state.Tenant, &tenant); err != nil {
			valid = false
		}
	}

	if !valid {
		if err := m.store.Clear(ctx); err != nil {
			log.Print("dashauth: clearing expired persisted state failed")
		}
		m.metrics.Inc(MetricSessionExpired)
		m.emitAudit(ctx, auditEventSessionExpired, true, "", "", decodeErr, nil)
		return
	}

	user.SessionExpiresAt = expiry
	m.accessToken = state.Token
	m.refreshToken = state.RefreshToken
	m.sess = Session{
		Phase:         PhaseAuthenticated,
		Authenticated: true,
		User:          &user,
		CurrentTenant: &tenant,
	}
	m.publishLocked()
	m.metrics.Inc(MetricSessionRestored)
	m.emitAudit(ctx, auditEventSessionRestored, true, user.ID, user.TenantID, nil, nil)
}

// Login authenticates against the backend. On success the credentials and
// the derived user/tenant snapshots are persisted together and the session
// becomes authenticated; the result carries the home redirect. When the
// principal resolves to multiple tenants, the session enters tenant
// selection and the result lists the choices instead. On failure the prior
// session — including a previously authenticated one — is preserved, with
// Session.Error set to the server-provided message or a generic fallback.
func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return m.loginInternal(ctx, email, password, "")
}

// LoginWithTenant is Login with an explicit tenant hint, for principals
// with access to more than one tenant.
func (m *Manager) LoginWithTenant(ctx context.Context, email, password, tenantID string) (*LoginResult, error) {
	return m.loginInternal(ctx, email, password, tenantID)
}

// SelectTenant completes a login that stopped in tenant selection: it
// re-submits the pending email with the chosen tenant. Fails with
// ErrNotAuthenticated when no tenant selection is pending.
func (m *Manager) SelectTenant(ctx context.Context, password, tenantID string) (*LoginResult, error) {
	m.lock()
	email := m.pendingEmail
	pending := m.sess.Phase == PhaseTenantSelection
	m.unlock()

	if !pending || email == "" {
		return nil, ErrNotAuthenticated
	}
	return m.loginInternal(ctx, email, password, tenantID)
}

func (m *Manager) loginInternal(ctx context.Context, email, password, tenantID string) (*LoginResult, error) {
	start := time.Now()

	m.lock()
	if m.closed {
		m.unlock()
		return nil, ErrManagerClosed
	}
	if !m.initialized {
		m.unlock()
		return nil, ErrManagerNotReady
	}
	epoch := m.epoch
	prev := m.sess
	m.sess.Loading = true
	m.sess.Error = ""
	m.sess.Phase = PhaseAuthenticating
	m.publishLocked()
	m.unlock()

	backendSession, loginErr := m.backend.Login(ctx, LoginRequest{
		Email:    email,
		Password: password,
		TenantID: tenantID,
	})
	m.metrics.Observe(MetricLoginLatency, time.Since(start))

	if loginErr != nil && errors.Is(loginErr, ErrMultipleTenants) && tenantID == "" {
		return m.enterTenantSelection(ctx, email, epoch)
	}

	m.lock()
	defer m.unlock()

	if m.closed || m.epoch != epoch {
		m.metrics.Inc(MetricStaleCompletionDropped)
		m.emitAudit(ctx, auditEventStaleCompletion, false, "", "", loginErr, func() map[string]string {
			return map[string]string{"operation": "login", "identifier": email}
		})
		return nil, ErrLoginSuperseded
	}

	if loginErr != nil {
		m.sess = prev
		m.sess.Loading = false
		m.sess.Error = userMessage(loginErr)
		m.publishLocked()
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", tenantID, loginErr, func() map[string]string {
			return map[string]string{"identifier": email}
		})
		return nil, loginErr
	}

	user := backendSession.User
	if expiry, err := m.decoder.ExpiresAt(backendSession.AccessToken); err == nil {
		user.SessionExpiresAt = expiry
	}
	if user.LastLogin.IsZero() {
		user.LastLogin = time.Now()
	}
	tenant := deriveTenant(backendSession, user)

	userJSON, err := json.Marshal(user)
	if err != nil {
		return m.failLoginLocked(ctx, prev, email, tenantID, err)
	}
	tenantJSON, err := json.Marshal(tenant)
	if err != nil {
		return m.failLoginLocked(ctx, prev, email, tenantID, err)
	}

	if err := m.store.Save(ctx, store.State{
		Token:        backendSession.AccessToken,
		RefreshToken: backendSession.RefreshToken,
		User:         userJSON,
		Tenant:       tenantJSON,
	}); err != nil {
		m.emitAudit(ctx, auditEventStoreWriteFailed, false, user.ID, user.TenantID, err, nil)
		return m.failLoginLocked(ctx, prev, email, tenantID, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	m.accessToken = backendSession.AccessToken
	m.refreshToken = backendSession.RefreshToken
	m.epoch++
	m.pendingEmail = ""
	m.sess = Session{
		Phase:         PhaseAuthenticated,
		Authenticated: true,
		User:          &user,
		Tenants:       append([]Tenant(nil), backendSession.Tenants...),
		CurrentTenant: &tenant,
	}
	m.publishLocked()
	m.metrics.Inc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, user.TenantID, nil, func() map[string]string {
		return map[string]string{"identifier": email}
	})

	result := &LoginResult{
		User:       m.copyUserLocked(),
		Tenants:    append([]Tenant(nil), backendSession.Tenants...),
		RedirectTo: m.config.Routes.HomePath,
	}
	return result, nil
}

func (m *Manager) failLoginLocked(ctx context.Context, prev Session, email, tenantID string, cause error) (*LoginResult, error) {
	m.sess = prev
	m.sess.Loading = false
	m.sess.Error = userMessage(cause)
	m.publishLocked()
	m.metrics.Inc(MetricLoginFailure)
	m.emitAudit(ctx, auditEventLoginFailure, false, "", tenantID, cause, func() map[string]string {
		return map[string]string{"identifier": email}
	})
	return nil, cause
}

func (m *Manager) enterTenantSelection(ctx context.Context, email string, epoch uint64) (*LoginResult, error) {
	// Tenant list fetch is best-effort; selection can proceed without it.
	tenants, err := m.backend.UserTenants(ctx, email)
	if err != nil {
		log.Print("dashauth: tenant list fetch failed during tenant selection")
		tenants = nil
	}

	m.lock()
	defer m.unlock()

	if m.closed || m.epoch != epoch {
		m.metrics.Inc(MetricStaleCompletionDropped)
		return nil, ErrLoginSuperseded
	}

	m.pendingEmail = email
	m.sess = Session{
		Phase:   PhaseTenantSelection,
		Tenants: append([]Tenant(nil), tenants...),
	}
	m.publishLocked()
	m.metrics.Inc(MetricTenantSelectionPending)
	m.emitAudit(ctx, auditEventTenantSelection, true, "", "", nil, func() map[string]string {
		return map[string]string{"identifier": email}
	})

	return &LoginResult{
		TenantSelection: true,
		Tenants:         append([]Tenant(nil), tenants...),
	}, nil
}

// UserTenants returns the tenants available to an email without mutating
// the session. It backs the tenant-selection screen.
func (m *Manager) UserTenants(ctx context.Context, email string) ([]Tenant, error) {
	return m.backend.UserTenants(ctx, email)
}

// SwitchTenant moves the authenticated user to another tenant. Role and
// permissions are untouched; only the user's tenant fields and the
// persisted tenant snapshot are replaced. Fails with ErrNotAuthenticated
// when no user is present and ErrSwitchRejected when the backend declines.
func (m *Manager) SwitchTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	m.lock()
	if m.closed {
		m.unlock()
		return nil, ErrManagerClosed
	}
	if m.sess.User == nil {
		m.unlock()
		return nil, ErrNotAuthenticated
	}
	epoch := m.epoch
	userID := m.sess.User.ID
	m.unlock()

	tenant, err := m.backend.SwitchTenant(ctx, userID, tenantID)

	m.lock()
	defer m.unlock()

	if m.closed || m.epoch != epoch {
		m.metrics.Inc(MetricStaleCompletionDropped)
		return nil, ErrLoginSuperseded
	}

	if err != nil || tenant == nil {
		if err == nil || !errors.Is(err, ErrSwitchRejected) {
			err = errors.Join(ErrSwitchRejected, err)
		}
		m.metrics.Inc(MetricTenantSwitchRejected)
		m.emitAudit(ctx, auditEventTenantSwitchRejected, false, userID, tenantID, err, nil)
		return nil, err
	}

	user := *m.sess.User
	user.TenantID = tenant.ID
	user.TenantName = tenant.Name
	user.TenantTier = tenant.Tier

	userJSON, marshalErr := json.Marshal(user)
	if marshalErr != nil {
		return nil, marshalErr
	}
	tenantJSON, marshalErr := json.Marshal(tenant)
	if marshalErr != nil {
		return nil, marshalErr
	}
	if storeErr := m.store.SetUserTenant(ctx, userJSON, tenantJSON); storeErr != nil {
		m.emitAudit(ctx, auditEventStoreWriteFailed, false, userID, tenant.ID, storeErr, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, storeErr)
	}

	tenantCopy := *tenant
	m.sess.User = &user
	m.sess.CurrentTenant = &tenantCopy
	m.publishLocked()
	m.metrics.Inc(MetricTenantSwitch)
	m.emitAudit(ctx, auditEventTenantSwitch, true, userID, tenant.ID, nil, nil)

	result := tenantCopy
	return &result, nil
}

// RefreshToken exchanges the persisted refresh credential for a new access
// token and updates storage in place. Missing refresh credential or any
// backend failure forces a logout — session expiry always resolves to the
// login screen, never to a wedged state.
func (m *Manager) RefreshToken(ctx context.Context) error {
	m.lock()
	if m.closed {
		m.unlock()
		return ErrManagerClosed
	}
	refresh := m.refreshToken
	epoch := m.epoch
	m.unlock()

	if refresh == "" {
		m.metrics.Inc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshFailure, false, "", "", ErrNoRefreshToken, nil)
		m.forceLogout(ctx, ErrNoRefreshToken)
		return ErrNoRefreshToken
	}

	newToken, err := m.backend.Refresh(ctx, refresh)

	m.lock()
	if m.closed || m.epoch != epoch {
		m.unlock()
		m.metrics.Inc(MetricStaleCompletionDropped)
		return ErrLoginSuperseded
	}

	if err != nil {
		m.unlock()
		m.metrics.Inc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventRefreshFailure, false, "", "", err, nil)
		m.forceLogout(ctx, err)
		return err
	}

	if storeErr := m.store.SetTokens(ctx, newToken, ""); storeErr != nil {
		m.unlock()
		m.metrics.Inc(MetricRefreshFailure)
		m.emitAudit(ctx, auditEventStoreWriteFailed, false, "", "", storeErr, nil)
		m.forceLogout(ctx, storeErr)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, storeErr)
	}

	m.accessToken = newToken
	if m.sess.User != nil {
		if expiry, decErr := m.decoder.ExpiresAt(newToken); decErr == nil {
			user := *m.sess.User
			user.SessionExpiresAt = expiry
			m.sess.User = &user
		}
	}
	m.publishLocked()
	userID, tenantID := m.identityLocked()
	m.unlock()

	m.metrics.Inc(MetricRefreshSuccess)
	m.emitAudit(ctx, auditEventRefreshSuccess, true, userID, tenantID, nil, nil)
	return nil
}

// Logout notifies the backend best-effort (failures are logged, never
// block), clears all persisted keys, and resets the session to the
// unauthenticated default. Logout is idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	return m.logoutInternal(ctx, false, nil)
}

func (m *Manager) forceLogout(ctx context.Context, cause error) {
	_ = m.logoutInternal(ctx, true, cause)
}

func (m *Manager) logoutInternal(ctx context.Context, forced bool, cause error) error {
	m.lock()
	if m.closed {
		m.unlock()
		return ErrManagerClosed
	}
	var userID, tenantID string
	if m.sess.User != nil {
		userID = m.sess.User.ID
		tenantID = m.sess.User.TenantID
	}
	m.unlock()

	// Backend notification happens outside the state transition so its
	// latency or failure can never delay the local logout.
	if userID != "" {
		notifyCtx := ctx
		if m.config.Backend.LogoutTimeout > 0 {
			var cancel context.CancelFunc
			notifyCtx, cancel = context.WithTimeout(ctx, m.config.Backend.LogoutTimeout)
			defer cancel()
		}
		if err := m.backend.Logout(notifyCtx, userID, tenantID); err != nil {
			log.Print("dashauth: backend logout notification failed")
			m.emitAudit(ctx, auditEventLogoutNotifyFailed, false, userID, tenantID, err, nil)
		}
	}

	m.lock()
	if m.closed {
		m.unlock()
		return ErrManagerClosed
	}

	if err := m.store.Clear(ctx); err != nil {
		// Local logout still proceeds; the stale keys are cleared on the
		// next Initialize when the token fails the expiry check.
		log.Print("dashauth: clearing persisted state on logout failed")
		m.emitAudit(ctx, auditEventStoreWriteFailed, false, userID, tenantID, err, nil)
	}

	m.epoch++
	m.accessToken = ""
	m.refreshToken = ""
	m.pendingEmail = ""
	m.sess = Session{Phase: PhaseUnauthenticated}
	m.publishLocked()
	m.unlock()

	if forced {
		m.metrics.Inc(MetricForcedLogout)
		m.emitAudit(ctx, auditEventForcedLogout, true, userID, tenantID, cause, nil)
	} else {
		m.metrics.Inc(MetricLogout)
		m.emitAudit(ctx, auditEventLogout, true, userID, tenantID, nil, nil)
	}
	return nil
}

// HasPermission reports whether the current user's permission set contains
// name. Unauthenticated sessions never hold permissions.
func (m *Manager) HasPermission(name string) bool {
	m.lock()
	defer m.unlock()
	if !m.sess.Authenticated || m.sess.User == nil {
		return false
	}
	return m.sess.User.Permissions.Has(name)
}

// HasMinRole reports whether the current user's role ranks at least as high
// as required in the fixed order guest < viewer < analyst < admin.
func (m *Manager) HasMinRole(required permission.Role) bool {
	m.lock()
	defer m.unlock()
	if !m.sess.Authenticated || m.sess.User == nil {
		return false
	}
	return m.sess.User.Role.AtLeast(required)
}

// IsAuthenticated describes the isauthenticated operation and its observable behavior.
//
// IsAuthenticated does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) IsAuthenticated() bool {
	m.lock()
	defer m.unlock()
	return m.sess.Authenticated
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *User {
	m.lock()
	defer m.unlock()
	return m.copyUserLocked()
}

// CurrentTenant returns a copy of the active tenant, or nil.
func (m *Manager) CurrentTenant() *Tenant {
	m.lock()
	defer m.unlock()
	if m.sess.CurrentTenant == nil {
		return nil
	}
	t := *m.sess.CurrentTenant
	return &t
}

// Snapshot returns the current Session value.
func (m *Manager) Snapshot() Session {
	m.lock()
	defer m.unlock()
	return m.snapshotLocked()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// Close stops the refresh loop, flushes the audit dispatcher, and closes
// all subscriber channels. The Manager is unusable afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}

	m.lock()
	if m.closed {
		m.unlock()
		return
	}
	m.closed = true
	cancel := m.loopCancel
	done := m.loopDone
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	m.unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

func (m *Manager) identityLocked() (string, string) {
	if m.sess.User == nil {
		return "", ""
	}
	return m.sess.User.ID, m.sess.User.TenantID
}

func (m *Manager) copyUserLocked() *User {
	if m.sess.User == nil {
		return nil
	}
	u := *m.sess.User
	return &u
}

func (m *Manager) snapshotLocked() Session {
	snap := m.sess
	snap.User = m.copyUserLocked()
	if m.sess.CurrentTenant != nil {
		t := *m.sess.CurrentTenant
		snap.CurrentTenant = &t
	}
	snap.Tenants = append([]Tenant(nil), m.sess.Tenants...)
	return snap
}

func deriveTenant(backendSession *BackendSession, user User) Tenant {
	for _, t := range backendSession.Tenants {
		if t.ID == user.TenantID {
			return t
		}
	}
	return Tenant{
		ID:     user.TenantID,
		Name:   user.TenantName,
		Tier:   user.TenantTier,
		Active: true,
	}
}

func userMessage(err error) string {
	var backendErr *BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrMultipleTenants):
		return "Multiple tenants available for this account"
	case errors.Is(err, ErrBackendUnavailable), errors.Is(err, ErrStoreUnavailable):
		return "Authentication service unavailable. Please try again."
	default:
		return "Login failed. Please try again."
	}
}
