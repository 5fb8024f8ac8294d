package query

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rzbill/msgquery/internal/msgstore"
)

// fakeStore serves fixed payloads and counts releases per lookup.
type fakeStore struct {
	mu       sync.Mutex
	payloads map[uint64][][]byte
	statuses map[uint64]msgstore.Status
	results  []*trackedResult
	block    chan struct{}
	lookups  atomic.Int64
}

type trackedResult struct {
	seq      uint64
	res      *msgstore.Result
	releases atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{payloads: map[uint64][][]byte{}, statuses: map[uint64]msgstore.Status{}}
}

func (s *fakeStore) put(seq uint64, bufs ...[]byte) { s.payloads[seq] = bufs }

func (s *fakeStore) fail(seq uint64, st msgstore.Status) { s.statuses[seq] = st }

func (s *fakeStore) Lookup(subject string, seq uint64) *msgstore.Result {
	s.lookups.Add(1)
	if s.block != nil {
		<-s.block
	}
	tr := &trackedResult{seq: seq}
	release := func() { tr.releases.Add(1) }
	switch {
	case s.statuses[seq] != msgstore.StatusUnknown:
		tr.res = msgstore.NewResult(s.statuses[seq], nil, release)
	case s.payloads[seq] != nil:
		tr.res = msgstore.NewResult(msgstore.StatusSuccess, s.payloads[seq], release)
	default:
		tr.res = msgstore.NewResult(msgstore.StatusNotFound, nil, release)
	}
	s.mu.Lock()
	s.results = append(s.results, tr)
	s.mu.Unlock()
	return tr.res
}

func (s *fakeStore) tracked() []*trackedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*trackedResult(nil), s.results...)
}

var errBrokenPipe = errors.New("broken pipe")

// memSink collects frames. failOnWrite makes the nth Write call (1-based) fail.
type memSink struct {
	mu          sync.Mutex
	buf         bytes.Buffer
	writes      int
	failOnWrite int
	closeErr    error
	flushed     int
	closed      int
}

func (s *memSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed > 0 {
		return 0, ErrSinkClosed
	}
	s.writes++
	if s.failOnWrite > 0 && s.writes >= s.failOnWrite {
		return 0, errBrokenPipe
	}
	return s.buf.Write(p)
}

func (s *memSink) Flush() error {
	s.mu.Lock()
	s.flushed++
	s.mu.Unlock()
	return nil
}

func (s *memSink) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return s.closeErr
}

func (s *memSink) bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

func keys(seqs ...uint64) []MessageKey {
	out := make([]MessageKey, len(seqs))
	for i, s := range seqs {
		out[i] = MessageKey{Sequence: Sequence(s)}
	}
	return out
}
