package dashauth

import (
	"context"
	"time"
)

// startRefreshLoopLocked spawns the background expiry watcher. Called once
// from Initialize with the state lock held.
func (m *Manager) startRefreshLoopLocked() {
	if m.config.Refresh.Disabled || m.loopDone != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.loopCancel = cancel
	m.loopDone = make(chan struct{})

	go m.refreshLoop(ctx, m.loopDone)
}

func (m *Manager) refreshLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.config.Refresh.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkRefresh(ctx)
		}
	}
}

// checkRefresh inspects the access token's remaining lifetime. An already
// expired (or undecodable) token forces a logout; a token inside the renew
// window triggers one refresh attempt. Tokens with plenty of life left are
// left alone.
func (m *Manager) checkRefresh(ctx context.Context) {
	m.lock()
	authenticated := m.sess.Authenticated
	accessToken := m.accessToken
	m.unlock()

	if !authenticated || accessToken == "" {
		return
	}

	remaining := m.decoder.Remaining(accessToken, time.Now())
	switch {
	case remaining <= 0:
		m.metrics.Inc(MetricSessionExpired)
		m.emitAudit(ctx, auditEventSessionExpired, true, "", "", nil, nil)
		m.forceLogout(ctx, ErrNotAuthenticated)
	case remaining < m.config.Refresh.RenewWithin:
		_ = m.RefreshToken(ctx)
	}
}
