package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

// ErrNotFound is returned for missing keys.
var ErrNotFound = errors.New("badger: key not found")

// Options configures the Badger store wrapper.
type Options struct {
	// DataDir is the Badger directory; created if missing.
	DataDir string
	// SyncWrites fsyncs every committed transaction.
	SyncWrites bool
	// Logger receives Badger's internal logs. Defaults to a warn-level console logger.
	Logger logpkg.Logger
	// BadgerOptions allows advanced tuning; Dir/ValueDir/SyncWrites/Logger are overwritten.
	BadgerOptions *badger.Options
}

// DB wraps a Badger database.
type DB struct {
	inner *badger.DB
	dir   string
}

// Open creates or opens a Badger database.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("badger: Options.DataDir is required")
	}
	if err := os.MkdirAll(opts.DataDir, 0o774); err != nil {
		return nil, fmt.Errorf("badger: create dir: %w", err)
	}
	var bo badger.Options
	if opts.BadgerOptions != nil {
		bo = *opts.BadgerOptions
		bo.Dir, bo.ValueDir = opts.DataDir, opts.DataDir
	} else {
		bo = badger.DefaultOptions(opts.DataDir)
		bo.NumMemtables = 2
		bo.NumCompactors = 2
		bo.VerifyValueChecksum = true
	}
	bo.SyncWrites = opts.SyncWrites
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.WarnLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	bo.Logger = badgerLogger{l: logger.WithComponent("badger")}

	inner, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", opts.DataDir, err)
	}
	return &DB{inner: inner, dir: opts.DataDir}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// Dir returns the data directory.
func (db *DB) Dir() string { return db.dir }

// Check runs an empty read transaction.
func (db *DB) Check() error {
	if db == nil || db.inner == nil {
		return errors.New("badger: db not open")
	}
	return db.inner.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{})
		it.Close()
		return nil
	})
}

// NewReadTxn opens a read-only transaction. Values copied from it are
// independent of it, but the caller must Discard it exactly once.
func (db *DB) NewReadTxn() *badger.Txn {
	return db.inner.NewTransaction(false)
}

// Update runs fn in a read-write transaction and commits it.
func (db *DB) Update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.inner.Update(fn)
}

// Set writes a single key.
func (db *DB) Set(key, value []byte) error {
	return db.Update(context.Background(), func(txn *badger.Txn) error { return txn.Set(key, value) })
}

// Get copies the value for key using a short-lived transaction.
func (db *DB) Get(key []byte) ([]byte, error) {
	txn := db.NewReadTxn()
	defer txn.Discard()
	return GetCopy(txn, key)
}

// GetCopy reads key inside txn and returns a copy of the value.
func GetCopy(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// badgerLogger adapts logpkg.Logger to badger.Logger.
type badgerLogger struct {
	l logpkg.Logger
}

func (b badgerLogger) Errorf(f string, args ...interface{})   { b.l.Errorf(f, args...) }
func (b badgerLogger) Warningf(f string, args ...interface{}) { b.l.Warnf(f, args...) }
func (b badgerLogger) Infof(f string, args ...interface{})    { b.l.Infof(f, args...) }
func (b badgerLogger) Debugf(f string, args ...interface{})   { b.l.Debugf(f, args...) }
