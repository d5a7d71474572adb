package dashauth

import (
	"context"
	"time"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventTenantSelection       = "tenant_selection_pending"
	auditEventSessionRestored       = "session_restored"
	auditEventSessionExpired        = "session_expired"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshFailure        = "refresh_failure"
	auditEventForcedLogout          = "forced_logout"
	auditEventLogout                = "logout"
	auditEventTenantSwitch          = "tenant_switch"
	auditEventTenantSwitchRejected  = "tenant_switch_rejected"
	auditEventStaleCompletion       = "stale_completion_dropped"
	auditEventLogoutNotifyFailed    = "logout_notify_failed"
	auditEventStoreWriteFailed      = "store_write_failed"
	auditEventSubscriberUnavailable = "subscriber_dropped_snapshot"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	tenantID string,
	errValue error,
	fieldsFn func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		TenantID:  tenantID,
		RequestID: RequestIDFromContext(ctx),
		Success:   success,
	}
	if errValue != nil {
		event.Error = errValue.Error()
	}
	if fieldsFn != nil {
		event.Fields = fieldsFn()
	}

	m.audit.Emit(ctx, event)
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}
