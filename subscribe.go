package dashauth

import "context"

// Subscribe registers a session observer. The returned channel immediately
// receives the current snapshot and then every subsequent transition. The
// channel is buffered; a subscriber that falls behind has its oldest
// pending snapshot dropped rather than blocking the manager. The channel is
// closed by Unsubscribe or Close.
func (m *Manager) Subscribe() (uint64, <-chan Session) {
	m.lock()
	defer m.unlock()

	id := m.nextSubID
	m.nextSubID++

	buffer := m.config.Subscription.Buffer
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Session, buffer)

	if m.closed {
		close(ch)
		return id, ch
	}

	m.subscribers[id] = ch
	ch <- m.snapshotLocked()
	return id, ch
}

// Unsubscribe removes an observer and closes its channel. Unknown ids are
// ignored.
func (m *Manager) Unsubscribe(id uint64) {
	m.lock()
	defer m.unlock()

	ch, ok := m.subscribers[id]
	if !ok {
		return
	}
	delete(m.subscribers, id)
	close(ch)
}

// publishLocked fans the current snapshot out to every subscriber. Slow
// subscribers lose their oldest pending snapshot first; if the channel is
// still full the new snapshot is dropped and counted.
func (m *Manager) publishLocked() {
	if len(m.subscribers) == 0 {
		return
	}

	snap := m.snapshotLocked()
	for _, ch := range m.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}

		select {
		case ch <- snap:
		default:
			m.metrics.Inc(MetricSubscriberDropped)
			m.emitAudit(context.Background(), auditEventSubscriberUnavailable, false, "", "", nil, nil)
		}
	}
}
