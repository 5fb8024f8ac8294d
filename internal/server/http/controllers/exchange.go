package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/rzbill/msgquery/internal/query"
)

// exchange tracks one in-flight query response. Complete may be called
// from any goroutine and any number of times.
type exchange struct {
	once sync.Once
	done chan struct{}
}

func newExchange() *exchange {
	return &exchange{done: make(chan struct{})}
}

func (e *exchange) Complete() {
	e.once.Do(func() { close(e.done) })
}

func (e *exchange) Done() <-chan struct{} { return e.done }

// responseSink adapts an http.ResponseWriter to query.Sink. Writes after
// Close or abort fail with query.ErrSinkClosed, so the handler may return
// while a worker still holds the sink.
type responseSink struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed bool
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	return &responseSink{w: w, rc: http.NewResponseController(w)}
}

func (s *responseSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, query.ErrSinkClosed
	}
	return s.w.Write(p)
}

func (s *responseSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return query.ErrSinkClosed
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// Close ends the sink. The response itself finishes when the handler returns.
func (s *responseSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// abort detaches the sink from the response writer; it returns once no
// write is in progress.
func (s *responseSink) abort() {
	_ = s.Close()
}
