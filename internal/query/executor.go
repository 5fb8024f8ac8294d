package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	logpkg "github.com/rzbill/msgquery/pkg/log"
)

const (
	// MinWorkers is the number of workers that never retire once started.
	MinWorkers = 1
	// DefaultMaxWorkers bounds concurrent jobs when no limit is configured.
	DefaultMaxWorkers = 5
	// DefaultKeepAlive is how long a worker above MinWorkers stays idle before retiring.
	DefaultKeepAlive = time.Minute
	// DefaultShutdownGrace bounds how long Close waits for outstanding jobs.
	DefaultShutdownGrace = 500 * time.Millisecond
)

// ErrRejected is returned by Submit once shutdown has begun.
var ErrRejected = errors.New("query: executor is shut down")

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// MaxWorkers caps live workers. Values below MinWorkers use DefaultMaxWorkers.
	MaxWorkers int
	// KeepAlive overrides DefaultKeepAlive.
	KeepAlive time.Duration
	// Name tags logs and stats.
	Name   string
	Logger logpkg.Logger
}

// Executor runs jobs on a pool of at most MaxWorkers goroutines. Workers are
// started on demand; jobs that find no free worker wait in an unbounded FIFO
// queue. Queue depth is reported by Stats and never causes rejection.
type Executor struct {
	name      string
	max       int
	keepAlive time.Duration
	logger    logpkg.Logger

	mu       sync.Mutex
	queue    []func()
	live     int
	idle     int
	running  int
	shutdown bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	submitted atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	panics    atomic.Uint64
}

// NewExecutor returns an Executor with no live workers.
func NewExecutor(opts ExecutorOptions) *Executor {
	limit := opts.MaxWorkers
	if limit < MinWorkers {
		limit = DefaultMaxWorkers
	}
	keepAlive := opts.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	name := opts.Name
	if name == "" {
		name = "query"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Executor{
		name:      name,
		max:       limit,
		keepAlive: keepAlive,
		logger:    logger.WithComponent("executor").With(logpkg.Str("pool", name)),
		wake:      make(chan struct{}, limit),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Submit queues job for execution. It never blocks and fails only with
// ErrRejected after Shutdown has been called.
func (e *Executor) Submit(job func()) error {
	if job == nil {
		return errors.New("query: nil job")
	}
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		e.rejected.Add(1)
		return ErrRejected
	}
	e.queue = append(e.queue, job)
	spawn := len(e.queue) > e.idle && e.live < e.max
	if spawn {
		e.live++
	}
	e.mu.Unlock()
	e.submitted.Add(1)

	if spawn {
		go e.work()
		return nil
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

func (e *Executor) work() {
	for {
		job, ok := e.next()
		if !ok {
			return
		}
		e.run(job)
		e.mu.Lock()
		e.running--
		e.mu.Unlock()
		e.completed.Add(1)
	}
}

// next blocks until a job is available. It returns false when the worker
// should exit, having already removed itself from the live count.
func (e *Executor) next() (func(), bool) {
	e.mu.Lock()
	for len(e.queue) == 0 {
		if e.shutdown {
			e.exitLocked()
			e.mu.Unlock()
			return nil, false
		}
		e.idle++
		e.mu.Unlock()

		timedOut := false
		timer := time.NewTimer(e.keepAlive)
		select {
		case <-e.wake:
		case <-e.quit:
		case <-timer.C:
			timedOut = true
		}
		timer.Stop()

		e.mu.Lock()
		e.idle--
		if timedOut && len(e.queue) == 0 && !e.shutdown && e.live > MinWorkers {
			e.exitLocked()
			e.mu.Unlock()
			e.logger.Debug("worker.retired")
			return nil, false
		}
	}
	job := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	e.running++
	e.mu.Unlock()
	return job, true
}

func (e *Executor) exitLocked() {
	e.live--
	if e.shutdown && e.live == 0 {
		close(e.done)
	}
}

func (e *Executor) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			e.logger.Error("job.panic", logpkg.Str("panic", fmt.Sprint(r)))
		}
	}()
	job()
}

// Shutdown stops accepting jobs and waits for the workers to drain the
// queue and exit. If ctx ends first it returns ctx.Err(); running jobs are
// not interrupted and keep their workers until they return.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.shutdown {
		e.shutdown = true
		close(e.quit)
		if e.live == 0 {
			close(e.done)
		}
		e.logger.Debug("executor.shutdown", logpkg.Int("queued", len(e.queue)), logpkg.Int("running", e.running))
	}
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close calls Shutdown bounded by DefaultShutdownGrace.
func (e *Executor) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	return e.Shutdown(ctx)
}

// ExecutorStats is a point-in-time view of an Executor.
type ExecutorStats struct {
	Name        string `json:"name"`
	MaxWorkers  int    `json:"maxWorkers"`
	LiveWorkers int    `json:"liveWorkers"`
	IdleWorkers int    `json:"idleWorkers"`
	Running     int    `json:"running"`
	QueueDepth  int    `json:"queueDepth"`
	Submitted   uint64 `json:"submitted"`
	Rejected    uint64 `json:"rejected"`
	Completed   uint64 `json:"completed"`
	Panics      uint64 `json:"panics"`
	Shutdown    bool   `json:"shutdown"`
}

// Stats returns the current pool counters.
func (e *Executor) Stats() ExecutorStats {
	e.mu.Lock()
	s := ExecutorStats{
		Name:        e.name,
		MaxWorkers:  e.max,
		LiveWorkers: e.live,
		IdleWorkers: e.idle,
		Running:     e.running,
		QueueDepth:  len(e.queue),
		Shutdown:    e.shutdown,
	}
	e.mu.Unlock()
	s.Submitted = e.submitted.Load()
	s.Rejected = e.rejected.Load()
	s.Completed = e.completed.Load()
	s.Panics = e.panics.Load()
	return s
}
