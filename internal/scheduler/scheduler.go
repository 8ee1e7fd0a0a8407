// Package scheduler debounces value capture: one persisted write per pause in typing.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/jetstorage/internal/clock"
)

// DefaultDelay is the idle period after the last input before a capture.
const DefaultDelay = 1000 * time.Millisecond

// Saver persists a captured value. It reports whether a new value was stored.
type Saver interface {
	Save(ctx context.Context, text, sourceURL string) (bool, error)
}

// Options configures a Scheduler.
type Options[K comparable] struct {
	Clock  clock.Clock
	Delay  time.Duration
	Logger *slog.Logger

	// OnSaved runs after a capture stored a new value.
	OnSaved func(key K, value string)
}

type pending struct {
	timer clock.Timer
	gen   uint64
}

// Scheduler keeps at most one pending capture per field key. Every Schedule
// call for a key replaces the previous pending capture, so only the last
// value of a burst survives the full delay.
type Scheduler[K comparable] struct {
	ctx    context.Context
	cancel context.CancelFunc
	saver  Saver
	clock  clock.Clock
	delay  time.Duration
	log    *slog.Logger
	saved  func(K, string)

	mu      sync.Mutex
	gen     uint64
	pending map[K]pending
}

// New creates a Scheduler writing through saver.
func New[K comparable](saver Saver, opts Options[K]) *Scheduler[K] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler[K]{
		ctx:     ctx,
		cancel:  cancel,
		saver:   saver,
		clock:   opts.Clock,
		delay:   opts.Delay,
		log:     opts.Logger,
		saved:   opts.OnSaved,
		pending: make(map[K]pending),
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Schedule (re)starts the capture timer for key with the latest value.
func (s *Scheduler[K]) Schedule(key K, value, sourceURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}
	s.gen++
	gen := s.gen
	timer := s.clock.AfterFunc(s.delay, func() { s.fire(key, gen, value, sourceURL) })
	s.pending[key] = pending{timer: timer, gen: gen}
}

// Cancel drops the pending capture for key, if any.
func (s *Scheduler[K]) Cancel(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
		delete(s.pending, key)
	}
}

// Pending reports whether key has a capture waiting.
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Stop cancels every pending capture and any save in flight.
// The scheduler accepts no further work.
func (s *Scheduler[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	for key, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, key)
	}
}

func (s *Scheduler[K]) fire(key K, gen uint64, value, sourceURL string) {
	s.mu.Lock()
	p, ok := s.pending[key]
	// A callback that lost the race with Schedule or Cancel must not save.
	if !ok || p.gen != gen || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	saved, err := s.saver.Save(s.ctx, value, sourceURL)
	if err != nil {
		s.log.Warn("capture dropped", "error", err)
		return
	}
	if saved && s.saved != nil {
		s.saved(key, value)
	}
}
