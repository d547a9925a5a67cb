package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	breakerName        = "redis"
	breakerTripFailure = 5
	breakerHalfOpenMax = 3
	breakerOpenTimeout = 10 * time.Second
	breakerInterval    = 60 * time.Second

	fallbackTTL     = 5 * time.Minute
	fallbackMaxKeys = 1024
)

var errBreakerOpen = errors.New("redis circuit breaker open")

// CircuitBreakerHook trips after consecutive Redis failures. While open, session reads are
// answered from the values most recently read or written through the hook; everything else
// fails fast. An aborted WATCH transaction is a lost race, not a failure.
type CircuitBreakerHook struct {
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.RedisMetrics
	clock   clockwork.Clock

	mu    sync.Mutex
	cache map[string]fallbackEntry
}

type fallbackEntry struct {
	value   string
	expires time.Time
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

func NewCircuitBreakerHook(m *metrics.RedisMetrics, clock clockwork.Clock) *CircuitBreakerHook {
	h := &CircuitBreakerHook{
		metrics: m,
		clock:   clock,
		cache:   make(map[string]fallbackEntry),
	}
	h.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerHalfOpenMax,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailure
		},
		OnStateChange: h.onStateChange,
	})
	return h
}

func (h *CircuitBreakerHook) onStateChange(name string, from, to gobreaker.State) {
	slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	if h.metrics == nil {
		return
	}
	h.metrics.CircuitBreakerState.Set(stateValue(to))
	h.metrics.CircuitStateChanges.WithLabelValues(to.String()).Inc()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var conn net.Conn
		_, err := h.cb.Execute(func() (any, error) {
			c, err := next(ctx, network, addr)
			conn = c
			return nil, err
		})
		if isBreakerRejection(err) {
			return nil, fmt.Errorf("%w: %w", errBreakerOpen, err)
		}
		return conn, err
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		var cmdErr error
		_, err := h.cb.Execute(func() (any, error) {
			cmdErr = next(ctx, cmd)
			if cmdErr != nil && !errors.Is(cmdErr, goredis.Nil) {
				return nil, cmdErr
			}
			return nil, nil
		})
		if isBreakerRejection(err) {
			return h.fallback(cmd, err)
		}
		if cmdErr == nil {
			h.remember(cmd)
		}
		return cmdErr
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		var cmdErr error
		_, err := h.cb.Execute(func() (any, error) {
			cmdErr = next(ctx, cmds)
			if cmdErr != nil && !errors.Is(cmdErr, goredis.Nil) && !errors.Is(cmdErr, goredis.TxFailedErr) {
				return nil, cmdErr
			}
			return nil, nil
		})
		if isBreakerRejection(err) {
			return fmt.Errorf("%w: %w", errBreakerOpen, err)
		}
		if cmdErr == nil {
			for _, cmd := range cmds {
				h.remember(cmd)
			}
		}
		return cmdErr
	}
}

// GetState returns the current breaker state.
func (h *CircuitBreakerHook) GetState() gobreaker.State {
	return h.cb.State()
}

// GetCounts returns the request counts of the current breaker generation.
func (h *CircuitBreakerHook) GetCounts() gobreaker.Counts {
	return h.cb.Counts()
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// remember keeps successful session reads and writes for the fallback path.
func (h *CircuitBreakerHook) remember(cmd goredis.Cmder) {
	args := cmd.Args()
	if len(args) < 2 {
		return
	}
	key, ok := args[1].(string)
	if !ok || !strings.HasPrefix(key, keyPrefix) {
		return
	}

	switch strings.ToLower(cmd.Name()) {
	case "get":
		if c, ok := cmd.(*goredis.StringCmd); ok {
			h.store(key, c.Val())
		}
	case "set":
		if len(args) < 3 {
			return
		}
		switch v := args[2].(type) {
		case string:
			h.store(key, v)
		case []byte:
			h.store(key, string(v))
		}
	case "del":
		h.mu.Lock()
		delete(h.cache, key)
		h.mu.Unlock()
	}
}

func (h *CircuitBreakerHook) store(key, value string) {
	now := h.clock.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.cache) >= fallbackMaxKeys {
		for k, e := range h.cache {
			if now.After(e.expires) {
				delete(h.cache, k)
			}
		}
		if len(h.cache) >= fallbackMaxKeys {
			return
		}
	}
	h.cache[key] = fallbackEntry{value: value, expires: now.Add(fallbackTTL)}
}

func (h *CircuitBreakerHook) fallback(cmd goredis.Cmder, cause error) error {
	if strings.ToLower(cmd.Name()) == "get" && len(cmd.Args()) >= 2 {
		key, _ := cmd.Args()[1].(string)

		h.mu.Lock()
		entry, ok := h.cache[key]
		h.mu.Unlock()

		if sc, isString := cmd.(*goredis.StringCmd); ok && isString && h.clock.Now().Before(entry.expires) {
			slog.Debug("Serving session from circuit breaker fallback", "key", key)
			sc.SetVal(entry.value)
			return nil
		}
	}
	return fmt.Errorf("%w: %w", errBreakerOpen, cause)
}
