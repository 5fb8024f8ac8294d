package msgstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	ErrInvalidSubject  = errors.New("msgstore: invalid subject")
	ErrEmptyPayload    = errors.New("msgstore: empty payload")
	ErrPayloadTooLarge = errors.New("msgstore: payload too large")
	ErrClosed          = errors.New("msgstore: store closed")
)

// Store is a sequence-addressed message store partitioned by subject.
// Implementations are safe for concurrent use.
type Store interface {
	// Append stores payload as the next message of subject and returns its sequence.
	Append(ctx context.Context, subject string, payload []byte) (uint64, error)
	// Lookup fetches one message. The returned Result is never nil and must be released.
	Lookup(subject string, sequence uint64) *Result
	// LastSequence returns the highest assigned sequence of subject, 0 if none.
	LastSequence(subject string) (uint64, error)
	Close() error
}

// Options are shared by all engines.
type Options struct {
	SegmentBytes     int
	PayloadMaxBytes  int
	SubjectNameRegex string
}

type validator struct {
	subject      *regexp.Regexp
	segmentBytes int
	payloadMax   int
}

func newValidator(opts Options) (*validator, error) {
	if opts.SegmentBytes <= 0 {
		return nil, fmt.Errorf("msgstore: segment size must be positive, got %d", opts.SegmentBytes)
	}
	pattern := opts.SubjectNameRegex
	if pattern == "" {
		pattern = `.+`
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("msgstore: subject pattern: %w", err)
	}
	return &validator{subject: re, segmentBytes: opts.SegmentBytes, payloadMax: opts.PayloadMaxBytes}, nil
}

func (v *validator) check(subject string, payload []byte) error {
	if subject == "" || !v.subject.MatchString(subject) {
		return fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if v.payloadMax > 0 && len(payload) > v.payloadMax {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), v.payloadMax)
	}
	return nil
}

// sequencer serializes appends per subject and caches the last sequence.
type sequencer struct {
	mu       sync.Mutex
	subjects map[string]*subjectSeq
	load     func(subject string) (uint64, error)
}

type subjectSeq struct {
	mu     sync.Mutex
	loaded bool
	last   uint64
}

func newSequencer(load func(string) (uint64, error)) *sequencer {
	return &sequencer{subjects: map[string]*subjectSeq{}, load: load}
}

// lock returns the subject's state locked, loading the persisted last sequence on first use.
func (s *sequencer) lock(subject string) (*subjectSeq, error) {
	s.mu.Lock()
	st, ok := s.subjects[subject]
	if !ok {
		st = &subjectSeq{}
		s.subjects[subject] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	if !st.loaded {
		last, err := s.load(subject)
		if err != nil {
			st.mu.Unlock()
			return nil, err
		}
		st.last, st.loaded = last, true
	}
	return st, nil
}

func (s *sequencer) last(subject string) (uint64, error) {
	st, err := s.lock(subject)
	if err != nil {
		return 0, err
	}
	defer st.mu.Unlock()
	return st.last, nil
}
