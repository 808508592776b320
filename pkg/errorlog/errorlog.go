package errorlog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the process's error log. All mutations and the snapshot write that
// follows them happen under one mutex, so concurrent handlers never lose an
// increment or an event and snapshot writes never interleave.
type Log struct {
	mu     sync.Mutex
	state  State
	store  Snapshotter
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger sets the logger used for persistence faults.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// New creates an empty error log persisted through store.
// Call Initialize before serving requests.
func New(store Snapshotter, opts ...Option) *Log {
	if store == nil {
		panic("snapshot store cannot be nil")
	}
	l := &Log{
		state:  State{Errors: []Event{}},
		store:  store,
		logger: log.With().Str("component", "errorlog").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize loads the persisted state. A missing snapshot starts an empty
// state which is persisted immediately. An unreadable or malformed snapshot
// is replaced by an empty state. The returned error is non-nil only when the
// replacement snapshot could not be written.
func (l *Log) Initialize(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(ctx)
	if err == nil {
		if state.Errors == nil {
			state.Errors = []Event{}
		}
		l.state = *state
		l.updateGauges()
		l.logger.Info().
			Int("errors", len(l.state.Errors)).
			Int64("total_requests", l.state.TotalRequests).
			Msg("Error log loaded")
		return nil
	}

	switch {
	case errors.Is(err, ErrNoSnapshot):
		l.logger.Info().Msg("No error log snapshot, starting empty")
	case errors.Is(err, ErrCorruptSnapshot):
		l.logger.Warn().Err(err).Msg("Corrupt error log snapshot, resetting")
	default:
		l.logger.Warn().Err(err).Msg("Failed to load error log snapshot, resetting")
	}

	l.state = State{Errors: []Event{}}
	l.updateGauges()
	return l.persistLocked(ctx)
}

// LogError records err, drops events older than Window relative to the time
// of this call, and persists the state. Persistence faults are logged only.
func (l *Log) LogError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.state.Errors = append(l.state.Errors, Event{Timestamp: now, Message: err.Error()})
	l.state.Errors = Prune(l.state.Errors, now)

	errorsLoggedTotal.Inc()
	l.updateGauges()

	_ = l.persistLocked(ctx)
}

// IncrementRequestCount adds one to the request counter and returns the new
// value. It does not persist; callers persist once the request is handled.
func (l *Log) IncrementRequestCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.TotalRequests++
	requestsTotal.Set(float64(l.state.TotalRequests))
	return l.state.TotalRequests
}

// Persist writes the full state, replacing the previous snapshot. It returns
// once the write has finished. Failures are logged and returned.
func (l *Log) Persist(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persistLocked(ctx)
}

// Snapshot returns a copy of the current state.
func (l *Log) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Log) persistLocked(ctx context.Context) error {
	snapshot := l.state.Clone()
	if err := l.store.Save(ctx, &snapshot); err != nil {
		persistFailuresTotal.Inc()
		l.logger.Warn().Err(err).Msg("Failed to persist error log")
		return err
	}
	return nil
}

func (l *Log) updateGauges() {
	errorsRetained.Set(float64(len(l.state.Errors)))
	requestsTotal.Set(float64(l.state.TotalRequests))
}
