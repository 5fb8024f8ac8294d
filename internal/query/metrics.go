package query

import "sync/atomic"

// Metrics counts query traffic across all requests served by a Dispatcher.
type Metrics struct {
	requests   atomic.Uint64
	keys       atomic.Uint64
	frames     atomic.Uint64
	bytes      atomic.Uint64
	omitted    atomic.Uint64
	failures   atomic.Uint64
	rejections atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Requests     uint64 `json:"requests"`
	KeysReceived uint64 `json:"keysReceived"`
	FramesSent   uint64 `json:"framesSent"`
	BytesSent    uint64 `json:"bytesSent"`
	KeysOmitted  uint64 `json:"keysOmitted"`
	Failures     uint64 `json:"failures"`
	Rejections   uint64 `json:"rejections"`
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) RecordRequest(keys int) {
	m.requests.Add(1)
	m.keys.Add(uint64(keys))
}

func (m *Metrics) RecordFrame(bytes int) {
	m.frames.Add(1)
	m.bytes.Add(uint64(bytes))
}

func (m *Metrics) RecordOmitted()   { m.omitted.Add(1) }
func (m *Metrics) RecordFailure()   { m.failures.Add(1) }
func (m *Metrics) RecordRejection() { m.rejections.Add(1) }

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:     m.requests.Load(),
		KeysReceived: m.keys.Load(),
		FramesSent:   m.frames.Load(),
		BytesSent:    m.bytes.Load(),
		KeysOmitted:  m.omitted.Load(),
		Failures:     m.failures.Load(),
		Rejections:   m.rejections.Load(),
	}
}
