package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/storage"
)

var fixedNow = time.Date(2024, time.May, 10, 15, 4, 5, 0, time.UTC)

func counterIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func demoFixture() []core.Transaction {
	return []core.Transaction{
		{ID: "demo-1", Description: "Salary", Amount: core.MustMoney("1000"), Date: "2024-01-01", Category: "salary", Type: core.Income},
		{ID: "demo-2", Description: "Lunch", Amount: core.MustMoney("12.5"), Date: "2024-01-02", Category: "food", Type: core.Expense},
	}
}

func newTestStore(t *testing.T, kv storage.KV, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(counterIDs()),
		WithDemoData(demoFixture),
	}
	return New(kv, append(base, opts...)...)
}

// flakyKV wraps a MemoryKV and can be told to fail reads or writes.
type flakyKV struct {
	*storage.MemoryKV
	getErr error
	setErr error
	sets   atomic.Int64
}

func newFlakyKV() *flakyKV {
	return &flakyKV{MemoryKV: storage.NewMemoryKV()}
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.sets.Add(1)
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryKV.Set(ctx, key, value)
}

type recordingNotifier struct {
	mu    sync.Mutex
	infos []SnapshotInfo
	err   error
}

func (r *recordingNotifier) SnapshotSaved(_ context.Context, info SnapshotInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, info)
	return r.err
}

var errBoom = errors.New("boom")
