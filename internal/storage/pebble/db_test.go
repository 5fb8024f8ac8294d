package pebblestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testMetrics struct {
	mu           sync.Mutex
	wrote        int
	read         int
	batchCommits int
	batchOps     int
	batchBytes   int
}

func (m *testMetrics) ObserveWrite(d time.Duration, bytes int) {
	m.mu.Lock()
	m.wrote += bytes
	m.mu.Unlock()
}
func (m *testMetrics) ObserveRead(d time.Duration, bytes int) {
	m.mu.Lock()
	m.read += bytes
	m.mu.Unlock()
}
func (m *testMetrics) ObserveBatchCommit(d time.Duration, numOps int, bytes int) {
	m.mu.Lock()
	m.batchCommits++
	m.batchOps += numOps
	m.batchBytes += bytes
	m.mu.Unlock()
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	dir := t.TempDir()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       dir,
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestCRUD(t *testing.T) {
	db, metrics := newTestDB(t)

	key := []byte("k1")
	val := []byte("v1")
	if err := db.Set(key, val); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("got %q want %q", got, val)
	}
	if metrics.read == 0 || metrics.wrote == 0 {
		t.Fatalf("expected read and write metrics to record bytes")
	}

	if err := db.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetPinned(t *testing.T) {
	db, _ := newTestDB(t)
	if err := db.Set([]byte("p"), []byte("pinned")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, closer, err := db.GetPinned([]byte("p"))
	if err != nil {
		t.Fatalf("get pinned: %v", err)
	}
	if string(v) != "pinned" {
		t.Fatalf("got %q", v)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	v, closer, err = db.GetPinned([]byte("missing"))
	if !errors.Is(err, ErrNotFound) || v != nil || closer != nil {
		t.Fatalf("missing key: v=%v closer=%v err=%v", v, closer, err)
	}
}

func TestBatchCommitMetrics(t *testing.T) {
	db, metrics := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	if metrics.batchCommits != 1 {
		t.Fatalf("want 1 batch commit, got %d", metrics.batchCommits)
	}
	if metrics.batchOps != 2 {
		t.Fatalf("want 2 ops, got %d", metrics.batchOps)
	}
	if metrics.batchBytes <= 0 {
		t.Fatalf("expected positive batch bytes")
	}
}

func TestCommitBatchCancelled(t *testing.T) {
	db, _ := newTestDB(t)
	b := db.NewBatch()
	defer b.Close()
	_ = b.Set([]byte("c"), []byte("3"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := db.CommitBatch(ctx, b); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := db.Get([]byte("c")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cancelled batch must not be applied")
	}
}

func TestParseFsyncMode(t *testing.T) {
	for _, s := range []string{"always", "interval", "never"} {
		m, err := ParseFsyncMode(s)
		if err != nil || m.String() != s {
			t.Fatalf("parse %q: %v %v", s, m, err)
		}
	}
	if _, err := ParseFsyncMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error for empty DataDir")
	}
}
