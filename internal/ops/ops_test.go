package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/jetstorage/internal/kv"
	"github.com/hpungsan/jetstorage/internal/store"
)

const testURL = "https://example.com/signup"

func boolPtr(b bool) *bool { return &b }

func newTestStore(t *testing.T, values ...string) *store.ValueStore {
	t.Helper()
	st := store.New(kv.NewMemory())
	for _, v := range values {
		saved, err := st.Save(context.Background(), v, testURL)
		if err != nil {
			t.Fatalf("Save(%q) error = %v", v, err)
		}
		if !saved {
			t.Fatalf("Save(%q) = false, want true", v)
		}
	}
	return st
}
