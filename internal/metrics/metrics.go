package metrics

import (
	"sync"
	"time"
)

type operationKey struct {
	operation string
	outcome   string
}

type operationStats struct {
	count       int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about store operations
// and forwards them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[operationKey]*operationStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[operationKey]*operationStats),
		otel:  otel,
	}
}

// RecordOperation counts one dispatched operation and its latency.
func (r *Recorder) RecordOperation(operation, outcome string, duration time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	key := operationKey{operation: operation, outcome: outcome}
	stats, ok := r.stats[key]
	if !ok {
		stats = &operationStats{}
		r.stats[key] = stats
	}
	stats.count++
	stats.lastLatency = duration
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordOperation(operation, outcome, duration)
	}
}

// Operations returns how many times operation finished with outcome.
func (r *Recorder) Operations(operation, outcome string) int {
	return r.Snapshot(operation, outcome).Count
}

// Snapshot is a copy of the stats for one operation/outcome pair.
type Snapshot struct {
	Count       int
	LastLatency time.Duration
}

func (r *Recorder) Snapshot(operation, outcome string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[operationKey{operation: operation, outcome: outcome}]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{Count: stats.count, LastLatency: stats.lastLatency}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}
