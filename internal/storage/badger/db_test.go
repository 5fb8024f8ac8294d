package badgerstore

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Outputs: []string{"null"}})
	db, err := Open(Options{DataDir: t.TempDir(), Logger: logger})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGet(t *testing.T) {
	db := newTestDB(t)
	if err := db.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q", got)
	}
	if _, err := db.Get([]byte("nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")
	err := db.Update(context.Background(), func(txn *badger.Txn) error {
		if err := txn.Set([]byte("a"), []byte("1")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := db.Get([]byte("a")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed update must not be applied")
	}
}

func TestReadTxnCopiesSurviveDiscard(t *testing.T) {
	db := newTestDB(t)
	_ = db.Set([]byte("k"), []byte("value"))
	txn := db.NewReadTxn()
	v, err := GetCopy(txn, []byte("k"))
	txn.Discard()
	if err != nil {
		t.Fatalf("get copy: %v", err)
	}
	if string(v) != "value" {
		t.Fatalf("got %q", v)
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error for empty DataDir")
	}
}
