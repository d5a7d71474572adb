package dashauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/zcscompany/dashauth/store"
	"github.com/zcscompany/dashauth/token"
)

// Builder defines a public type used by dashauth APIs.
//
// Builder assembles a Manager from its dependencies. A Builder is
// single-use: Build may only be called once. Builders are not safe for
// concurrent use; configure on one goroutine, then share the Manager.
type Builder struct {
	cfg     Config
	redis   redis.UniversalClient
	backend Backend
	sink    AuditSink
	built   bool
}

// New returns a Builder pre-loaded with DefaultConfig.
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithRedis sets the Redis client backing the persisted auth state.
// Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithBackend sets the authentication backend. Required.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to a no-op
// sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram. Implies
// nothing about counters; both flags are independent in config.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.cfg.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Manager. The Manager
// is inert until Initialize is called.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.backend == nil {
		return nil, errors.New("backend is required")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	cfg := cloneConfig(b.cfg)

	m := &Manager{
		config:      cfg,
		backend:     b.backend,
		store:       store.New(b.redis, cfg.Store.RedisPrefix),
		decoder:     token.NewDecoder(),
		audit:       newAuditDispatcher(cfg.Audit, b.sink),
		metrics:     NewMetrics(cfg.Metrics),
		subscribers: make(map[uint64]chan Session),
		sess:        Session{Phase: PhaseUnauthenticated},
	}

	return m, nil
}
