package query

import (
	"errors"
	"fmt"
	"io"

	"github.com/rzbill/msgquery/internal/msgstore"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

// ErrSinkClosed is returned by sinks written to after Close.
var ErrSinkClosed = errors.New("query: sink closed")

// Store is the lookup side of the message store. Implementations must be
// safe for concurrent use.
type Store interface {
	Lookup(subject string, sequence uint64) *msgstore.Result
}

// Sink receives the frames of one query.
type Sink interface {
	io.Writer
	Flush() error
	Close() error
}

// Dispatcher turns descriptors into executor jobs.
type Dispatcher struct {
	store   Store
	exec    *Executor
	logger  logpkg.Logger
	metrics *Metrics
}

// NewDispatcher returns a Dispatcher that runs lookups against store on exec.
func NewDispatcher(store Store, exec *Executor, logger logpkg.Logger) *Dispatcher {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Dispatcher{store: store, exec: exec, logger: logger.WithComponent("query"), metrics: NewMetrics()}
}

// Metrics returns the dispatcher's counters.
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

// Executor returns the pool the dispatcher submits to.
func (d *Dispatcher) Executor() *Executor { return d.exec }

// Dispatch submits one job streaming desc's frames into sink and returns
// without waiting for it. The future fails with ErrRejected if the executor
// is shut down, in which case sink is never touched. An empty descriptor
// resolves immediately.
func (d *Dispatcher) Dispatch(desc *Descriptor, sink Sink) *Future {
	if desc.Empty() {
		return resolvedFuture(nil)
	}
	d.metrics.RecordRequest(len(desc.Keys))
	f := newFuture()
	err := d.exec.Submit(func() {
		err := d.execute(desc, sink)
		if err != nil {
			d.metrics.RecordFailure()
		}
		f.complete(err)
	})
	if err != nil {
		d.metrics.RecordRejection()
		f.complete(err)
	}
	return f
}

// execute streams every found key in order, then flushes and closes sink.
// The first write error stops the loop; flush and close still run.
func (d *Dispatcher) execute(desc *Descriptor, sink Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query: job panicked: %v", r)
		}
	}()

	for _, k := range desc.Keys {
		if err = d.writeKey(sink, desc.Subject, uint64(k.Sequence)); err != nil {
			break
		}
	}
	if ferr := sink.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// writeKey looks one key up and writes its frame. The result is released
// on every path.
func (d *Dispatcher) writeKey(sink Sink, subject string, seq uint64) error {
	res := d.store.Lookup(subject, seq)
	if res == nil {
		d.metrics.RecordOmitted()
		return nil
	}
	defer res.Release()

	if res.Status != msgstore.StatusSuccess {
		d.metrics.RecordOmitted()
		if res.Status != msgstore.StatusNotFound {
			d.logger.Warn("lookup.failed",
				logpkg.Str("subject", subject),
				logpkg.Uint64("seq", seq),
				logpkg.Str("status", res.Status.String()),
				logpkg.Err(res.Err))
		}
		return nil
	}
	n, err := WriteFrame(sink, seq, res.Buffers)
	if err != nil {
		return fmt.Errorf("query: write frame %s/%d: %w", subject, seq, err)
	}
	d.metrics.RecordFrame(n)
	return nil
}
