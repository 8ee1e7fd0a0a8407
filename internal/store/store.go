// Package store persists captured values as a newest-first, case-insensitive set.
package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/jetstorage/internal/capture"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/kv"
)

// MaxWriteAttempts bounds the compare-and-swap retry loop for one write.
const MaxWriteAttempts = 5

// Option configures a ValueStore.
type Option func(*ValueStore)

// WithLogger sets the logger used for degraded reads.
func WithLogger(l *slog.Logger) Option {
	return func(s *ValueStore) { s.log = l }
}

// WithNow overrides the time source for timestamps and ids.
func WithNow(now func() time.Time) Option {
	return func(s *ValueStore) { s.now = now }
}

// ValueStore reads and writes the capturedValues and config keys of a kv.Store.
//
// Every write is a read-modify-write of the whole collection committed with
// CompareAndSwap, so concurrent writers (other tabs, other processes) retry
// instead of overwriting each other.
type ValueStore struct {
	kv  kv.Store
	log *slog.Logger
	now func() time.Time
}

// New creates a ValueStore on top of backend.
func New(backend kv.Store, opts ...Option) *ValueStore {
	s := &ValueStore{
		kv:  backend,
		log: slog.Default(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns all stored values, most recently added first.
// A missing, unreadable or corrupt collection yields an empty result.
func (s *ValueStore) Load(ctx context.Context) []capture.CapturedValue {
	values, _, err := s.read(ctx)
	if err != nil {
		s.log.Warn("load captured values", "error", err)
		return []capture.CapturedValue{}
	}
	return values
}

// Save remembers text if it is long enough and not already known.
//
// It returns false without error for short text and for case-insensitive
// duplicates. Storage failures are returned as *errors.JetError.
func (s *ValueStore) Save(ctx context.Context, text, sourceURL string) (bool, error) {
	if !capture.Capturable(text) {
		return false, nil
	}
	cleaned := capture.Clean(text)

	saved := false
	err := s.update(ctx, func(values []capture.CapturedValue) ([]capture.CapturedValue, bool, error) {
		if capture.Contains(values, cleaned) {
			saved = false
			return nil, false, nil
		}
		id, err := s.newID()
		if err != nil {
			return nil, false, errors.NewInternal(err)
		}
		v := capture.CapturedValue{
			ID:        id,
			Value:     cleaned,
			Timestamp: s.now().UnixMilli(),
			SourceURL: sourceURL,
		}
		saved = true
		return append([]capture.CapturedValue{v}, values...), true, nil
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// Remove deletes the value with the given id.
func (s *ValueStore) Remove(ctx context.Context, id string) error {
	return s.update(ctx, func(values []capture.CapturedValue) ([]capture.CapturedValue, bool, error) {
		for i, v := range values {
			if v.ID == id {
				next := make([]capture.CapturedValue, 0, len(values)-1)
				next = append(next, values[:i]...)
				next = append(next, values[i+1:]...)
				return next, true, nil
			}
		}
		return nil, false, errors.NewNotFound(id)
	})
}

// Clear removes every stored value and returns how many were removed.
func (s *ValueStore) Clear(ctx context.Context) (int, error) {
	cleared := 0
	err := s.update(ctx, func(values []capture.CapturedValue) ([]capture.CapturedValue, bool, error) {
		cleared = len(values)
		if cleared == 0 {
			return nil, false, nil
		}
		return []capture.CapturedValue{}, true, nil
	})
	if err != nil {
		return 0, err
	}
	return cleared, nil
}

// Settings returns the persisted toggles, or defaults when none are stored
// or the store cannot be read.
func (s *ValueStore) Settings(ctx context.Context) config.Storage {
	raw, _, err := s.kv.Get(ctx, kv.KeyConfig)
	if err != nil {
		s.log.Warn("load settings", "error", err)
		return config.DefaultStorage()
	}
	if len(raw) == 0 {
		return config.DefaultStorage()
	}
	settings := config.DefaultStorage()
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Warn("decode settings", "error", err)
		return config.DefaultStorage()
	}
	return settings
}

// UpdateSettings persists new toggles.
func (s *ValueStore) UpdateSettings(ctx context.Context, settings config.Storage) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.kv.Set(ctx, kv.KeyConfig, data); err != nil {
		return errors.NewStorageUnavailable(err)
	}
	return nil
}

// mutation returns the next collection and whether it should be written.
type mutation func([]capture.CapturedValue) ([]capture.CapturedValue, bool, error)

// update applies fn under optimistic concurrency, retrying on lost races.
func (s *ValueStore) update(ctx context.Context, fn mutation) error {
	for attempt := 0; attempt < MaxWriteAttempts; attempt++ {
		values, version, err := s.read(ctx)
		if err != nil {
			return err
		}

		next, write, err := fn(values)
		if err != nil || !write {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return errors.NewInternal(err)
		}

		ok, err := s.kv.CompareAndSwap(ctx, kv.KeyCapturedValues, version, data)
		if err != nil {
			return errors.NewStorageUnavailable(err)
		}
		if ok {
			return nil
		}
		s.log.Debug("captured values changed concurrently, retrying", "attempt", attempt+1)
	}
	return errors.NewConflict(fmt.Sprintf("captured values changed concurrently %d times", MaxWriteAttempts))
}

// read returns the stored collection and its version.
func (s *ValueStore) read(ctx context.Context) ([]capture.CapturedValue, int64, error) {
	raw, version, err := s.kv.Get(ctx, kv.KeyCapturedValues)
	if err != nil {
		return nil, 0, errors.NewStorageUnavailable(err)
	}
	if len(raw) == 0 {
		return []capture.CapturedValue{}, version, nil
	}
	var values []capture.CapturedValue
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, 0, errors.NewInternal(fmt.Errorf("decode captured values: %w", err))
	}
	if values == nil {
		values = []capture.CapturedValue{}
	}
	return values, version, nil
}

// newID generates a new ULID.
func (s *ValueStore) newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(s.now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
