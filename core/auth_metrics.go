package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for the auth counters.
const (
	registrationsKey = "auth:registrations"
	loginsKey        = "auth:logins"
	loginFailuresKey = "auth:login_failures"
	tokenDenialsKey  = "auth:token_denials"
)

// AuthCounters is a snapshot of the operational counters.
type AuthCounters struct {
	Registrations int64 `json:"registrations"`
	Logins        int64 `json:"logins"`
	LoginFailures int64 `json:"login_failures"`
	TokenDenials  int64 `json:"token_denials"`
}

// RedisCounterClient exposes the minimal subset of go-redis used for counters.
type RedisCounterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

// AuthMetrics tracks registration/login counters in Redis. All counting is
// best effort: failures are logged and never fail the request. A nil
// *AuthMetrics is valid and counts nothing.
type AuthMetrics struct {
	redis RedisCounterClient
}

func NewAuthMetrics(redis RedisCounterClient) *AuthMetrics {
	return &AuthMetrics{redis: redis}
}

func (m *AuthMetrics) incr(ctx context.Context, key string) {
	if m == nil || m.redis == nil {
		return
	}
	if err := m.redis.Incr(ctx, key).Err(); err != nil {
		slog.WarnContext(ctx, "failed to increment counter", "key", key, "error", err)
	}
}

func (m *AuthMetrics) CountRegistration(ctx context.Context) { m.incr(ctx, registrationsKey) }
func (m *AuthMetrics) CountLogin(ctx context.Context)        { m.incr(ctx, loginsKey) }
func (m *AuthMetrics) CountLoginFailure(ctx context.Context) { m.incr(ctx, loginFailuresKey) }
func (m *AuthMetrics) CountTokenDenial(ctx context.Context)  { m.incr(ctx, tokenDenialsKey) }

// Overview returns the current counter values. Missing keys read as zero.
func (m *AuthMetrics) Overview(ctx context.Context) (AuthCounters, error) {
	var counters AuthCounters
	if m == nil || m.redis == nil {
		return counters, nil
	}
	for key, dst := range map[string]*int64{
		registrationsKey: &counters.Registrations,
		loginsKey:        &counters.Logins,
		loginFailuresKey: &counters.LoginFailures,
		tokenDenialsKey:  &counters.TokenDenials,
	} {
		n, err := m.redis.Get(ctx, key).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return AuthCounters{}, err
		}
		*dst = n
	}
	return counters, nil
}
