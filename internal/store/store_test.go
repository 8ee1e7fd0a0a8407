package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/db"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/kv"
)

const testURL = "https://example.com/form"

// failingKV rejects every call.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, int64, error) {
	return nil, 0, fmt.Errorf("access denied")
}
func (failingKV) Set(context.Context, string, []byte) error { return fmt.Errorf("access denied") }
func (failingKV) CompareAndSwap(context.Context, string, int64, []byte) (bool, error) {
	return false, fmt.Errorf("access denied")
}
func (failingKV) Delete(context.Context, string) error { return fmt.Errorf("access denied") }

// racingKV lets another writer sneak in before the first n swaps.
type racingKV struct {
	*kv.Memory
	races int
	other func()
}

func (r *racingKV) CompareAndSwap(ctx context.Context, key string, version int64, value []byte) (bool, error) {
	if r.races > 0 {
		r.races--
		r.other()
	}
	return r.Memory.CompareAndSwap(ctx, key, version, value)
}

func newTestStore(t *testing.T) *ValueStore {
	t.Helper()
	return New(kv.NewMemory())
}

func TestSave_RejectsShortText(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, text := range []string{"", "a", "   ", "  b  "} {
		saved, err := s.Save(ctx, text, testURL)
		require.NoError(t, err)
		require.False(t, saved, "Save(%q) should be a no-op", text)
	}
	require.Empty(t, s.Load(ctx))
}

func TestSave_CaseInsensitiveDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, err := s.Save(ctx, "Hello", testURL)
	require.NoError(t, err)
	require.True(t, saved)

	saved, err = s.Save(ctx, "hello", testURL)
	require.NoError(t, err)
	require.False(t, saved)

	values := s.Load(ctx)
	require.Len(t, values, 1)
	require.Equal(t, "Hello", values[0].Value)
}

func TestSave_IdempotentAfterFirstSuccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, err := s.Save(ctx, "John Doe", testURL)
	require.NoError(t, err)
	require.True(t, saved)

	for i := 0; i < 3; i++ {
		saved, err = s.Save(ctx, "John Doe", testURL)
		require.NoError(t, err)
		require.False(t, saved)
	}
	require.Len(t, s.Load(ctx), 1)
}

func TestSave_TrimsAndFillsFields(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(kv.NewMemory(), WithNow(func() time.Time { return now }))

	saved, err := s.Save(ctx, "  padded value \n", testURL)
	require.NoError(t, err)
	require.True(t, saved)

	values := s.Load(ctx)
	require.Len(t, values, 1)
	require.Equal(t, "padded value", values[0].Value)
	require.Equal(t, now.UnixMilli(), values[0].Timestamp)
	require.Equal(t, testURL, values[0].SourceURL)
	require.Len(t, values[0].ID, 26, "ID should be a ULID")
}

func TestSave_TrimmedDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, "Alpha", testURL)
	require.NoError(t, err)

	saved, err := s.Save(ctx, "  ALPHA  ", testURL)
	require.NoError(t, err)
	require.False(t, saved)
}

func TestLoad_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, v := range []string{"first", "second", "third"} {
		_, err := s.Save(ctx, v, testURL)
		require.NoError(t, err)
	}

	values := s.Load(ctx)
	require.Len(t, values, 3)
	require.Equal(t, "third", values[0].Value)
	require.Equal(t, "second", values[1].Value)
	require.Equal(t, "first", values[2].Value)

	ids := map[string]bool{}
	for _, v := range values {
		require.False(t, ids[v.ID], "duplicate id %s", v.ID)
		ids[v.ID] = true
	}
}

func TestLoad_EmptyBackingStore(t *testing.T) {
	values := newTestStore(t).Load(context.Background())
	require.NotNil(t, values)
	require.Empty(t, values)
}

func TestLoad_DegradesOnFailure(t *testing.T) {
	s := New(failingKV{})
	values := s.Load(context.Background())
	require.NotNil(t, values)
	require.Empty(t, values)
}

func TestLoad_DegradesOnCorruptData(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(ctx, kv.KeyCapturedValues, []byte("{not json")))

	require.Empty(t, New(backend).Load(ctx))
}

func TestSave_StorageFailure(t *testing.T) {
	saved, err := New(failingKV{}).Save(context.Background(), "hello", testURL)
	require.False(t, saved)
	require.True(t, errors.Is(err, errors.ErrStorageUnavailable), "err = %v", err)
}

func TestSave_RetriesOnConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	other := New(mem)
	backend := &racingKV{Memory: mem, races: 1}
	backend.other = func() {
		_, err := other.Save(ctx, "from other tab", testURL)
		require.NoError(t, err)
	}

	saved, err := New(backend).Save(ctx, "from this tab", testURL)
	require.NoError(t, err)
	require.True(t, saved)

	values := other.Load(ctx)
	require.Len(t, values, 2, "neither write may be lost")
	require.Equal(t, "from this tab", values[0].Value)
	require.Equal(t, "from other tab", values[1].Value)
}

func TestSave_ConcurrentDuplicateSeenOnRetry(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	other := New(mem)
	backend := &racingKV{Memory: mem, races: 1}
	backend.other = func() {
		_, err := other.Save(ctx, "Same Value", testURL)
		require.NoError(t, err)
	}

	saved, err := New(backend).Save(ctx, "same value", testURL)
	require.NoError(t, err)
	require.False(t, saved, "retry must re-check uniqueness")
	require.Len(t, other.Load(ctx), 1)
}

func TestSave_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	n := 0
	backend := &racingKV{Memory: mem, races: MaxWriteAttempts}
	backend.other = func() {
		n++
		require.NoError(t, mem.Set(ctx, kv.KeyCapturedValues, []byte("[]")))
	}

	saved, err := New(backend).Save(ctx, "never lands", testURL)
	require.False(t, saved)
	require.True(t, errors.Is(err, errors.ErrConflict), "err = %v", err)
	require.Equal(t, MaxWriteAttempts, n)
}

func TestSave_ConcurrentGoroutinesSQLite(t *testing.T) {
	ctx := context.Background()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	s := New(db.NewKV(database))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Save(ctx, fmt.Sprintf("value %d", i), testURL); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, s.Load(ctx), 4)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, "keep me", testURL)
	require.NoError(t, err)
	_, err = s.Save(ctx, "drop me", testURL)
	require.NoError(t, err)

	values := s.Load(ctx)
	require.NoError(t, s.Remove(ctx, values[0].ID))

	values = s.Load(ctx)
	require.Len(t, values, 1)
	require.Equal(t, "keep me", values[0].Value)

	err = s.Remove(ctx, "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound), "err = %v", err)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	for _, v := range []string{"one", "two"} {
		_, err := s.Save(ctx, v, testURL)
		require.NoError(t, err)
	}

	n, err = s.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Empty(t, s.Load(ctx))

	saved, err := s.Save(ctx, "one", testURL)
	require.NoError(t, err)
	require.True(t, saved, "cleared values may be captured again")
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.Equal(t, config.DefaultStorage(), s.Settings(ctx))

	want := config.Storage{ExcludeSecrets: false, AutoAutocomplete: true}
	require.NoError(t, s.UpdateSettings(ctx, want))
	require.Equal(t, want, s.Settings(ctx))
}

func TestSettings_DegradesToDefaults(t *testing.T) {
	require.Equal(t, config.DefaultStorage(), New(failingKV{}).Settings(context.Background()))

	err := New(failingKV{}).UpdateSettings(context.Background(), config.Storage{})
	require.True(t, errors.Is(err, errors.ErrStorageUnavailable))
}
