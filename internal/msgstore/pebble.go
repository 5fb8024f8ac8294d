package msgstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	pebblestore "github.com/rzbill/msgquery/internal/storage/pebble"
)

// PebbleStore keeps messages in Pebble. Lookup pins values in Pebble's block
// cache and the Result lease unpins them.
type PebbleStore struct {
	db     *pebblestore.DB
	v      *validator
	seq    *sequencer
	closed atomic.Bool
}

// NewPebbleStore takes ownership of db; Close closes it.
func NewPebbleStore(db *pebblestore.DB, opts Options) (*PebbleStore, error) {
	v, err := newValidator(opts)
	if err != nil {
		return nil, err
	}
	s := &PebbleStore{db: db, v: v}
	s.seq = newSequencer(s.loadLast)
	return s, nil
}

func (s *PebbleStore) loadLast(subject string) (uint64, error) {
	b, err := s.db.Get(KeyMeta(subject))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	seq, ok := decodeSeq(b)
	if !ok {
		return 0, fmt.Errorf("msgstore: corrupt metadata for subject %q", subject)
	}
	return seq, nil
}

// Append writes header, segments and subject metadata in one batch.
func (s *PebbleStore) Append(ctx context.Context, subject string, payload []byte) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if err := s.v.check(subject, payload); err != nil {
		return 0, err
	}
	st, err := s.seq.lock(subject)
	if err != nil {
		return 0, err
	}
	defer st.mu.Unlock()

	seq := st.last + 1
	segs := splitSegments(payload, s.v.segmentBytes)

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyHeader(subject, seq), EncodeHeader(len(segs), payload), nil); err != nil {
		return 0, err
	}
	for i, seg := range segs {
		if err := b.Set(KeySegment(subject, seq, uint32(i)), seg, nil); err != nil {
			return 0, err
		}
	}
	if err := b.Set(KeyMeta(subject), encodeSeq(seq), nil); err != nil {
		return 0, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	st.last = seq
	return seq, nil
}

// Lookup pins the header and every segment of one message.
func (s *PebbleStore) Lookup(subject string, sequence uint64) *Result {
	if s.closed.Load() {
		return failed(StatusStorageError, ErrClosed)
	}
	hv, hc, err := s.db.GetPinned(KeyHeader(subject, sequence))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return failed(StatusNotFound, nil)
	}
	if err != nil {
		return failed(StatusStorageError, err)
	}
	h, ok := DecodeHeader(hv)
	_ = hc.Close()
	if !ok {
		return failed(StatusCorrupt, fmt.Errorf("msgstore: bad header %s/%d", subject, sequence))
	}

	bufs := make([][]byte, 0, h.Segments)
	closers := make([]io.Closer, 0, h.Segments)
	release := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	for i := 0; i < h.Segments; i++ {
		v, c, err := s.db.GetPinned(KeySegment(subject, sequence, uint32(i)))
		if err != nil {
			release()
			if errors.Is(err, pebblestore.ErrNotFound) {
				return failed(StatusCorrupt, fmt.Errorf("msgstore: missing segment %d of %s/%d", i, subject, sequence))
			}
			return failed(StatusStorageError, err)
		}
		bufs = append(bufs, v)
		closers = append(closers, c)
	}
	if !h.Verify(bufs) {
		release()
		return failed(StatusCorrupt, fmt.Errorf("msgstore: checksum mismatch %s/%d", subject, sequence))
	}
	return NewResult(StatusSuccess, bufs, release)
}

// LastSequence returns the last assigned sequence of subject.
func (s *PebbleStore) LastSequence(subject string) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.seq.last(subject)
}

// DB exposes the underlying database for health checks.
func (s *PebbleStore) DB() *pebblestore.DB { return s.db }

// Close closes the store and its database.
func (s *PebbleStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
