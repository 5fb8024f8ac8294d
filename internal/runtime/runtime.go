package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cfgpkg "github.com/rzbill/msgquery/internal/config"
	"github.com/rzbill/msgquery/internal/msgstore"
	badgerstore "github.com/rzbill/msgquery/internal/storage/badger"
	pebblestore "github.com/rzbill/msgquery/internal/storage/pebble"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	// Engine overrides Config.Store.Engine when set.
	Engine        string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage and config for a single-node instance.
type Runtime struct {
	config  cfgpkg.Config
	engine  string
	store   msgstore.Store
	health  func() error
	metrics *StorageMetrics
	logger  logpkg.Logger

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// Open initializes the configured storage engine and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if opts.DataDir == "" {
		return nil, errors.New("runtime: data dir is required")
	}
	cfg := opts.Config
	if opts.Engine != "" {
		cfg.Store.Engine = opts.Engine
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	storeOpts := msgstore.Options{
		SegmentBytes:     cfg.Store.SegmentBytes,
		PayloadMaxBytes:  cfg.Store.PayloadMaxBytes,
		SubjectNameRegex: cfg.Store.SubjectNameRegex,
	}
	rt := &Runtime{config: cfg, engine: cfg.Store.Engine, metrics: &StorageMetrics{}, logger: logger.WithComponent("runtime")}
	dir := cfgpkg.EngineDir(opts.DataDir, cfg.Store.Engine)

	switch cfg.Store.Engine {
	case cfgpkg.EnginePebble:
		db, err := pebblestore.Open(pebblestore.Options{
			DataDir:       dir,
			Fsync:         opts.Fsync,
			FsyncInterval: opts.FsyncInterval,
			Metrics:       rt.metrics,
		})
		if err != nil {
			return nil, err
		}
		s, err := msgstore.NewPebbleStore(db, storeOpts)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		rt.store = s
		rt.health = func() error {
			it, err := db.NewIter(nil)
			if err != nil {
				return err
			}
			return it.Close()
		}
	case cfgpkg.EngineBadger:
		db, err := badgerstore.Open(badgerstore.Options{
			DataDir:    dir,
			SyncWrites: opts.Fsync == pebblestore.FsyncModeAlways,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		s, err := msgstore.NewBadgerStore(db, storeOpts)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		rt.store = s
		rt.health = db.Check
	default:
		return nil, fmt.Errorf("runtime: unknown engine %q", cfg.Store.Engine)
	}
	rt.logger.Info("store.opened", logpkg.Str("engine", rt.engine), logpkg.Str("dir", dir))
	return rt, nil
}

// Close closes the message store. It is safe to call more than once.
func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		if r.store != nil {
			r.closeErr = r.store.Close()
		}
	})
	return r.closeErr
}

// CheckHealth verifies the store still answers reads.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.store == nil || r.closed.Load() {
		return errors.New("store not open")
	}
	return r.health()
}

// Store returns the message store.
func (r *Runtime) Store() msgstore.Store { return r.store }

// Engine returns the name of the open storage engine.
func (r *Runtime) Engine() string { return r.engine }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// StorageMetrics returns pebble read/write counters. Badger runtimes report zeros.
func (r *Runtime) StorageMetrics() *StorageMetrics { return r.metrics }

// StorageMetrics implements pebblestore.MetricsHook with atomic counters.
type StorageMetrics struct {
	reads        atomic.Uint64
	readBytes    atomic.Uint64
	writes       atomic.Uint64
	commits      atomic.Uint64
	commitOps    atomic.Uint64
	commitBytes  atomic.Uint64
	commitMicros atomic.Uint64
}

// StorageSnapshot is a point-in-time copy of StorageMetrics.
type StorageSnapshot struct {
	Reads          uint64 `json:"reads"`
	ReadBytes      uint64 `json:"readBytes"`
	Writes         uint64 `json:"writes"`
	Commits        uint64 `json:"commits"`
	CommitOps      uint64 `json:"commitOps"`
	CommitBytes    uint64 `json:"commitBytes"`
	CommitMicros uint64 `json:"commitMicrosTotal"`
}

func (m *StorageMetrics) ObserveRead(_ time.Duration, bytes int) {
	m.reads.Add(1)
	m.readBytes.Add(uint64(bytes))
}

func (m *StorageMetrics) ObserveWrite(time.Duration, int) { m.writes.Add(1) }

func (m *StorageMetrics) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int) {
	m.commits.Add(1)
	m.commitOps.Add(uint64(numOps))
	m.commitBytes.Add(uint64(bytes))
	m.commitMicros.Add(uint64(elapsed.Microseconds()))
}

func (m *StorageMetrics) Snapshot() StorageSnapshot {
	return StorageSnapshot{
		Reads:          m.reads.Load(),
		ReadBytes:      m.readBytes.Load(),
		Writes:         m.writes.Load(),
		Commits:        m.commits.Load(),
		CommitOps:      m.commitOps.Load(),
		CommitBytes:    m.commitBytes.Load(),
		CommitMicros: m.commitMicros.Load(),
	}
}

var _ pebblestore.MetricsHook = (*StorageMetrics)(nil)
