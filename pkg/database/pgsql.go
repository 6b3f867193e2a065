package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnState is the connection manager's lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateFailed       ConnState = "failed"
)

// ManagerOptions configures the connection manager.
type ManagerOptions struct {
	Retry           RetryPolicy
	Breaker         *CircuitBreaker
	ConnectTimeout  time.Duration
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// Manager owns the pgx connection pool and composes the retry policy with the
// circuit-breaker gate. The breaker decides whether a Connect may start; the
// retry policy drives the attempts inside it.
type Manager struct {
	opts   ManagerOptions
	logger *slog.Logger

	mu    sync.Mutex
	state ConnState
	pool  *pgxpool.Pool
}

// ConnStatus is a snapshot for health reporting.
type ConnStatus struct {
	State               ConnState `json:"state"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	BreakerOpen         bool      `json:"breakerOpen"`
	PingMillis          int64     `json:"pingMillis"`
	PingError           string    `json:"pingError,omitempty"`
}

// NewManager creates a connection manager. Connect must be called before Pool.
func NewManager(opts ManagerOptions, logger *slog.Logger) *Manager {
	if opts.Breaker == nil {
		opts.Breaker = NewCircuitBreaker(3, time.Minute)
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &Manager{opts: opts, logger: logger, state: StateDisconnected}
}

// nonRetryable reports whether a connection error cannot be fixed by waiting:
// bad credentials, unresolvable host, or a malformed URI.
func nonRetryable(err error) bool {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLSTATE 28"), // invalid_authorization_specification family
		strings.Contains(msg, "password authentication failed"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "cannot parse"),
		strings.Contains(msg, "invalid dsn"):
		return true
	}
	return false
}

// Connect establishes the pool, retrying with exponential backoff across the
// configured attempt budget. Non-retryable errors abort immediately and trip
// the breaker.
func (m *Manager) Connect(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL cannot be empty")
	}
	if !m.opts.Breaker.Allow() {
		return fmt.Errorf("circuit breaker open: refusing to attempt database connection")
	}

	m.setState(StateConnecting)

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		m.setState(StateFailed)
		m.opts.Breaker.Trip()
		return fmt.Errorf("failed to parse database config: %w", err)
	}
	if m.opts.MaxConns > 0 {
		poolCfg.MaxConns = m.opts.MaxConns
	}
	if m.opts.MinConns > 0 {
		poolCfg.MinConns = m.opts.MinConns
	}
	if m.opts.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = m.opts.MaxConnIdleTime
	}

	for attempt := 1; ; attempt++ {
		pool, err := m.tryConnect(ctx, poolCfg)
		if err == nil {
			m.mu.Lock()
			m.pool = pool
			m.state = StateConnected
			m.mu.Unlock()
			m.opts.Breaker.RecordSuccess()
			m.logger.Info("Database connection pool established")
			return nil
		}

		if nonRetryable(err) {
			m.logger.Error("Non-retryable database connection error, aborting",
				slog.Int("attempt", attempt), slog.String("error", err.Error()))
			m.setState(StateFailed)
			m.opts.Breaker.Trip()
			return fmt.Errorf("non-retryable database connection error: %w", err)
		}

		m.logger.Warn("Database connection attempt failed",
			slog.Int("attempt", attempt), slog.Int("max_attempts", m.opts.Retry.MaxAttempts),
			slog.String("error", err.Error()))

		if m.opts.Retry.Exhausted(attempt) {
			m.setState(StateFailed)
			m.opts.Breaker.RecordFailure()
			return fmt.Errorf("database connection failed after %d attempts: %w", attempt, err)
		}

		delay := m.opts.Retry.Delay(attempt)
		m.logger.Info("Retrying database connection", slog.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.setState(StateFailed)
			return ctx.Err()
		}
	}
}

func (m *Manager) tryConnect(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Pool returns the live connection pool. Only valid after a successful Connect.
func (m *Manager) Pool() *pgxpool.Pool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool
}

// Status returns a snapshot for the database health endpoint, including a ping
// latency measurement when connected.
func (m *Manager) Status(ctx context.Context) ConnStatus {
	m.mu.Lock()
	state := m.state
	pool := m.pool
	m.mu.Unlock()

	status := ConnStatus{
		State:               state,
		ConsecutiveFailures: m.opts.Breaker.ConsecutiveFailures(),
		BreakerOpen:         state == StateFailed && !m.opts.Breaker.Allow(),
		PingMillis:          -1,
	}

	if state == StateConnected && pool != nil {
		start := time.Now()
		if err := pool.Ping(ctx); err != nil {
			status.PingError = err.Error()
		} else {
			status.PingMillis = time.Since(start).Milliseconds()
		}
	}
	return status
}

// Close shuts the pool down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
	}
	m.state = StateDisconnected
}

func (m *Manager) setState(s ConnState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
