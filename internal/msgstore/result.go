package msgstore

import (
	"sync/atomic"
)

// Status classifies a lookup outcome.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusNotFound
	// StatusCorrupt marks a header or segment that failed decoding or its checksum.
	StatusCorrupt
	// StatusStorageError marks a backend failure (I/O, closed store).
	StatusStorageError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusCorrupt:
		return "CORRUPT"
	case StatusStorageError:
		return "STORAGE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Result is a lease on the storage buffers of one message. Buffers are only
// valid until Release; the holder must call Release once whatever the Status.
type Result struct {
	Status  Status
	Buffers [][]byte
	// Err carries the cause of a non-success status, if any.
	Err error

	release  func()
	released atomic.Bool
}

// NewResult wraps buffers and the function that returns them to storage.
func NewResult(status Status, buffers [][]byte, release func()) *Result {
	return &Result{Status: status, Buffers: buffers, release: release}
}

func failed(status Status, err error) *Result {
	return &Result{Status: status, Err: err}
}

// Release returns the buffers to storage. Calls after the first are no-ops.
func (r *Result) Release() {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	r.Buffers = nil
	if r.release != nil {
		r.release()
	}
}

// Released reports whether Release has been called.
func (r *Result) Released() bool { return r.released.Load() }

// Size returns the payload length across all buffers.
func (r *Result) Size() int {
	n := 0
	for _, b := range r.Buffers {
		n += len(b)
	}
	return n
}
