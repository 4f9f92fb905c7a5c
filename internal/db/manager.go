package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"rawmart-be/internal/config"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Event string

const (
	EventConnected    Event = "connected"
	EventDisconnected Event = "disconnected"
	EventError        Event = "error"
	EventReconnected  Event = "reconnected"
)

const (
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultProbeTimeout        = 2 * time.Second
	DefaultMinRetryInterval    = 5 * time.Second
	DefaultBaseBackoff         = time.Second
	DefaultMaxBackoff          = 30 * time.Second
	DefaultMaxFailures         = 3
	DefaultRetireGrace         = 30 * time.Second
)

var (
	ErrRateLimited = errors.New("database connection attempt rate limited")
	ErrClosed      = errors.New("connection manager closed")
)

// ConfigError is returned while the manager is failing fast after
// MaxFailures consecutive dial failures.
type ConfigError struct {
	Target   string
	Failures int
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(
		"database unreachable at %s after %d consecutive failures; check DATABASE_URL and that the server accepts connections: %v",
		e.Target, e.Failures, e.Err,
	)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type Opener func(ctx context.Context) (*sql.DB, error)

type Listener func(event Event, err error)

type Options struct {
	// Target names the database in errors and logs; it must not carry a password.
	Target              string
	HealthCheckInterval time.Duration
	ProbeTimeout        time.Duration
	MinRetryInterval    time.Duration
	BaseBackoff         time.Duration
	MaxBackoff          time.Duration
	MaxFailures         int
	// RetireGrace is how long a pool that failed its health probe stays open
	// for callers that already hold it.
	RetireGrace time.Duration
	Now         func() time.Time
}

func (o *Options) setDefaults() {
	if o.HealthCheckInterval <= 0 {
		o.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.MinRetryInterval <= 0 {
		o.MinRetryInterval = DefaultMinRetryInterval
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = DefaultBaseBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DefaultMaxBackoff
	}
	if o.MaxFailures <= 0 {
		o.MaxFailures = DefaultMaxFailures
	}
	if o.RetireGrace <= 0 {
		o.RetireGrace = DefaultRetireGrace
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Target == "" {
		o.Target = "database"
	}
}

// Manager owns the process' single connection pool. Concurrent callers share
// one in-flight connection attempt; failures back off exponentially. Once
// MaxFailures consecutive attempts have failed the manager returns ConfigError
// until the current backoff window elapses, then lets one dial through.
type Manager struct {
	open  Opener
	opts  Options
	group singleflight.Group

	mu            sync.Mutex
	db            *sql.DB
	lastCheck     time.Time
	everConnected bool
	failures      int
	lastFailure   time.Time
	lastErr       error
	closed        bool
	retiring      map[*sql.DB]*time.Timer
	listeners     []Listener

	Attempts   metrics.Counter
	Failures   metrics.Counter
	Reconnects metrics.Counter
}

// New builds a manager for cfg's PostgreSQL database.
func New(cfg *config.Config) *Manager {
	return NewManager(PostgresOpener(cfg), Options{Target: config.MaskDSN(cfg.DSN())})
}

func NewManager(open Opener, opts Options) *Manager {
	opts.setDefaults()
	m := &Manager{open: open, opts: opts}
	m.OnEvent(logListener(opts.Target))
	return m
}

func logListener(target string) Listener {
	log := logger.Named("db").With(zap.String("target", target))
	return func(event Event, err error) {
		switch event {
		case EventConnected:
			log.Info("database connected")
		case EventReconnected:
			log.Info("database reconnected")
		case EventDisconnected:
			log.Warn("database disconnected", zap.Error(err))
		case EventError:
			log.Error("database connection error", zap.Error(err))
		}
	}
}

// OnEvent registers a listener for connection state transitions.
func (m *Manager) OnEvent(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

func (m *Manager) emit(event Event, err error) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(event, err)
	}
}

// Get implements Provider.
func (m *Manager) Get(ctx context.Context) (*sql.DB, error) {
	return m.Connect(ctx)
}

// Connect returns the cached pool when it is healthy, otherwise dials once
// on behalf of every concurrent caller.
func (m *Manager) Connect(ctx context.Context) (*sql.DB, error) {
	if db := m.healthy(ctx); db != nil {
		return db, nil
	}

	v, err, _ := m.group.Do("connect", func() (interface{}, error) {
		return m.dial(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

func (m *Manager) healthy(ctx context.Context) *sql.DB {
	m.mu.Lock()
	db := m.db
	fresh := db != nil && m.opts.Now().Sub(m.lastCheck) < m.opts.HealthCheckInterval
	m.mu.Unlock()

	if db == nil {
		return nil
	}
	if fresh {
		return db
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.opts.ProbeTimeout)
	err := db.PingContext(probeCtx)
	cancel()

	m.mu.Lock()
	if m.db != db {
		current := m.db
		m.mu.Unlock()
		return current
	}
	if err == nil {
		m.lastCheck = m.opts.Now()
		m.mu.Unlock()
		return db
	}
	m.db = nil
	m.retireLocked(db)
	m.mu.Unlock()

	m.emit(EventDisconnected, err)
	return nil
}

// retireLocked closes db after RetireGrace so queries already running on it
// finish with their own result. Must be called with mu held.
func (m *Manager) retireLocked(db *sql.DB) {
	if m.retiring == nil {
		m.retiring = make(map[*sql.DB]*time.Timer)
	}
	m.retiring[db] = time.AfterFunc(m.opts.RetireGrace, func() {
		m.mu.Lock()
		delete(m.retiring, db)
		m.mu.Unlock()
		_ = db.Close()
	})
}

func (m *Manager) dial(ctx context.Context) (*sql.DB, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.db != nil {
		db := m.db
		m.mu.Unlock()
		return db, nil
	}
	if wait := m.retryWait(m.opts.Now()); wait > 0 {
		if m.failures >= m.opts.MaxFailures {
			err := m.configError()
			m.mu.Unlock()
			return nil, err
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: retry in %s", ErrRateLimited, wait.Round(time.Millisecond))
	}
	m.mu.Unlock()

	m.Attempts.Inc()
	db, err := m.open(ctx)

	m.mu.Lock()
	if err != nil {
		m.failures++
		m.lastFailure = m.opts.Now()
		m.lastErr = err
		m.Failures.Inc()
		exhausted := m.failures >= m.opts.MaxFailures
		var cfgErr error
		if exhausted {
			cfgErr = m.configError()
		}
		m.mu.Unlock()

		m.emit(EventError, err)
		if exhausted {
			return nil, cfgErr
		}
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if m.closed {
		m.mu.Unlock()
		_ = db.Close()
		return nil, ErrClosed
	}

	reconnect := m.everConnected
	m.db = db
	m.lastCheck = m.opts.Now()
	m.failures = 0
	m.lastErr = nil
	m.everConnected = true
	m.mu.Unlock()

	if reconnect {
		m.Reconnects.Inc()
		m.emit(EventReconnected, nil)
	} else {
		m.emit(EventConnected, nil)
	}
	return db, nil
}

// configError must be called with mu held.
func (m *Manager) configError() error {
	return &ConfigError{Target: m.opts.Target, Failures: m.failures, Err: m.lastErr}
}

// retryWait must be called with mu held.
func (m *Manager) retryWait(now time.Time) time.Duration {
	if m.failures == 0 {
		return 0
	}
	window := Backoff(m.failures, m.opts.BaseBackoff, m.opts.MaxBackoff)
	if window < m.opts.MinRetryInterval {
		window = m.opts.MinRetryInterval
	}
	return m.lastFailure.Add(window).Sub(now)
}

// Backoff is base·2^(failures-1), capped at max.
func Backoff(failures int, base, max time.Duration) time.Duration {
	if failures <= 0 {
		return 0
	}
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

type Stats struct {
	Connected           bool      `json:"connected"`
	LastHealthCheck     time.Time `json:"lastHealthCheck"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	RetryIn             string    `json:"retryIn,omitempty"`
	Attempts            uint64    `json:"attempts"`
	Failures            uint64    `json:"failures"`
	Reconnects          uint64    `json:"reconnects"`
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{
		Connected:           m.db != nil,
		LastHealthCheck:     m.lastCheck,
		ConsecutiveFailures: m.failures,
		Attempts:            m.Attempts.Load(),
		Failures:            m.Failures.Load(),
		Reconnects:          m.Reconnects.Load(),
	}
	if wait := m.retryWait(m.opts.Now()); wait > 0 {
		st.RetryIn = wait.Round(time.Millisecond).String()
	}
	return st
}

// Close releases the pool; later calls to Connect return ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.closed = true
	retiring := m.retiring
	m.retiring = nil
	m.mu.Unlock()

	for old, timer := range retiring {
		if timer.Stop() {
			_ = old.Close()
		}
	}
	if db == nil {
		return nil
	}
	err := db.Close()
	m.emit(EventDisconnected, nil)
	return err
}
