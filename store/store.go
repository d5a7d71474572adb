package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is an exported constant or variable used by the session manager.
var ErrUnavailable = errors.New("state store unavailable")

// ErrEmpty is returned by Load when no auth state is persisted.
var ErrEmpty = errors.New("no persisted auth state")

const (
	keySuffixToken   = "token"
	keySuffixRefresh = "refresh"
	keySuffixUser    = "user"
	keySuffixTenant  = "tenant"
)

// State is the persisted auth snapshot. User and Tenant are opaque JSON
// blobs; the root package owns their concrete types.
type State struct {
	Token        string
	RefreshToken string
	User         json.RawMessage
	Tenant       json.RawMessage
}

// Store is a Redis-backed persistence layer for the session manager's auth
// state. All four keys live under a fixed namespace prefix and are written
// and cleared transactionally.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(suffix string) string {
	return s.prefix + ":" + suffix
}

// Save persists the full auth state. All four keys are written in one
// Redis transaction; a partially written state is never observable.
func (s *Store) Save(ctx context.Context, state State) error {
	if state.Token == "" {
		return errors.New("state token must not be empty")
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(keySuffixToken), state.Token, 0)
		if state.RefreshToken != "" {
			pipe.Set(ctx, s.key(keySuffixRefresh), state.RefreshToken, 0)
		} else {
			pipe.Del(ctx, s.key(keySuffixRefresh))
		}
		pipe.Set(ctx, s.key(keySuffixUser), []byte(state.User), 0)
		pipe.Set(ctx, s.key(keySuffixTenant), []byte(state.Tenant), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Load returns the persisted auth state. ErrEmpty means a clean slate (no
// token persisted); any other error is a transport problem.
func (s *Store) Load(ctx context.Context) (State, error) {
	values, err := s.redis.MGet(ctx,
		s.key(keySuffixToken),
		s.key(keySuffixRefresh),
		s.key(keySuffixUser),
		s.key(keySuffixTenant),
	).Result()
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(values) != 4 {
		return State{}, fmt.Errorf("%w: short mget response", ErrUnavailable)
	}

	state := State{
		Token:        stringValue(values[0]),
		RefreshToken: stringValue(values[1]),
		User:         json.RawMessage(stringValue(values[2])),
		Tenant:       json.RawMessage(stringValue(values[3])),
	}
	if state.Token == "" {
		return State{}, ErrEmpty
	}

	return state, nil
}

// SetTokens replaces the access token (and, when non-empty, the refresh
// token) in place, leaving the user and tenant snapshots untouched. Used by
// the refresh path.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return errors.New("access token must not be empty")
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(keySuffixToken), accessToken, 0)
		if refreshToken != "" {
			pipe.Set(ctx, s.key(keySuffixRefresh), refreshToken, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// SetUserTenant replaces the persisted user and tenant snapshots in place,
// leaving tokens untouched. Used by the tenant-switch path.
func (s *Store) SetUserTenant(ctx context.Context, user, tenant json.RawMessage) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(keySuffixUser), []byte(user), 0)
		pipe.Set(ctx, s.key(keySuffixTenant), []byte(tenant), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Clear removes all four keys in one transaction. Clearing an already-empty
// namespace is a no-op; Clear is idempotent.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx,
			s.key(keySuffixToken),
			s.key(keySuffixRefresh),
			s.key(keySuffixUser),
			s.key(keySuffixTenant),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}

func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return ""
	}
}
