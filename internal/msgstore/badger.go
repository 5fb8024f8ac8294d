package msgstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v2"
	badgerstore "github.com/rzbill/msgquery/internal/storage/badger"
)

// BadgerStore keeps messages in Badger. Each Lookup holds a read transaction
// for the lifetime of its Result; Release discards it.
type BadgerStore struct {
	db     *badgerstore.DB
	v      *validator
	seq    *sequencer
	closed atomic.Bool
}

// NewBadgerStore takes ownership of db; Close closes it.
func NewBadgerStore(db *badgerstore.DB, opts Options) (*BadgerStore, error) {
	v, err := newValidator(opts)
	if err != nil {
		return nil, err
	}
	s := &BadgerStore{db: db, v: v}
	s.seq = newSequencer(s.loadLast)
	return s, nil
}

func (s *BadgerStore) loadLast(subject string) (uint64, error) {
	b, err := s.db.Get(KeyMeta(subject))
	if errors.Is(err, badgerstore.ErrNotFound) {
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

// Append writes header, segments and metadata in one transaction.
func (s *BadgerStore) Append(ctx context.Context, subject string, payload []byte) (uint64, error) {
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
	err = s.db.Update(ctx, func(txn *badger.Txn) error {
		if err := txn.Set(KeyHeader(subject, seq), EncodeHeader(len(segs), payload)); err != nil {
			return err
		}
		for i, seg := range segs {
			if err := txn.Set(KeySegment(subject, seq, uint32(i)), seg); err != nil {
				return err
			}
		}
		return txn.Set(KeyMeta(subject), encodeSeq(seq))
	})
	if err != nil {
		return 0, err
	}
	st.last = seq
	return seq, nil
}

// Lookup reads the header and segments inside one read transaction.
func (s *BadgerStore) Lookup(subject string, sequence uint64) *Result {
	if s.closed.Load() {
		return failed(StatusStorageError, ErrClosed)
	}
	txn := s.db.NewReadTxn()
	hv, err := badgerstore.GetCopy(txn, KeyHeader(subject, sequence))
	if err != nil {
		txn.Discard()
		if errors.Is(err, badgerstore.ErrNotFound) {
			return failed(StatusNotFound, nil)
		}
		return failed(StatusStorageError, err)
	}
	h, ok := DecodeHeader(hv)
	if !ok {
		txn.Discard()
		return failed(StatusCorrupt, fmt.Errorf("msgstore: bad header %s/%d", subject, sequence))
	}
	bufs := make([][]byte, 0, h.Segments)
	for i := 0; i < h.Segments; i++ {
		v, err := badgerstore.GetCopy(txn, KeySegment(subject, sequence, uint32(i)))
		if err != nil {
			txn.Discard()
			if errors.Is(err, badgerstore.ErrNotFound) {
				return failed(StatusCorrupt, fmt.Errorf("msgstore: missing segment %d of %s/%d", i, subject, sequence))
			}
			return failed(StatusStorageError, err)
		}
		bufs = append(bufs, v)
	}
	if !h.Verify(bufs) {
		txn.Discard()
		return failed(StatusCorrupt, fmt.Errorf("msgstore: checksum mismatch %s/%d", subject, sequence))
	}
	return NewResult(StatusSuccess, bufs, txn.Discard)
}

// LastSequence returns the last assigned sequence of subject.
func (s *BadgerStore) LastSequence(subject string) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.seq.last(subject)
}

// DB exposes the underlying database for health checks.
func (s *BadgerStore) DB() *badgerstore.DB { return s.db }

// Close closes the store and its database.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
