package aio

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the latency histogram buckets in nanoseconds.
// Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for an engine.
type Metrics struct {
	// Submission counters
	SubmitCalls    atomic.Uint64 // Total Submit calls accepted
	FragmentsSent  atomic.Uint64 // Total control blocks submitted to the kernel
	SubmitErrors   atomic.Uint64 // Submit calls that failed (non-EAGAIN)

	// Completion counters
	CompletionsOK  atomic.Uint64 // Requests that completed with Result >= 0
	CompletionErrs atomic.Uint64 // Requests that completed with Result < 0
	BytesCompleted atomic.Uint64 // Sum of non-negative request Results

	// Queue statistics
	QueueDepthTotal atomic.Uint64 // Cumulative pending-queue depth samples
	QueueDepthCount atomic.Uint64 // Number of queue depth measurements
	MaxQueueDepth   atomic.Uint32 // Maximum observed queue depth

	// Performance tracking
	TotalLatencyNs atomic.Uint64 // Cumulative submit-to-complete latency
	OpCount        atomic.Uint64 // Total completed requests

	// Latency histogram buckets (cumulative counts).
	// Each bucket[i] contains the count of requests with latency <= LatencyBuckets[i].
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Collection window
	StartTime atomic.Int64 // NewMetrics/Reset timestamp (UnixNano)
	StopTime  atomic.Int64 // Stop timestamp (UnixNano), 0 until Stop is called
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordSubmit records a Submit call and the number of fragments it produced.
func (m *Metrics) RecordSubmit(fragments int, success bool) {
	m.SubmitCalls.Add(1)
	if success {
		m.FragmentsSent.Add(uint64(fragments))
	} else {
		m.SubmitErrors.Add(1)
	}
}

// RecordComplete records a finished request's aggregated result.
func (m *Metrics) RecordComplete(bytes uint64, latencyNs uint64, success bool) {
	if success {
		m.CompletionsOK.Add(1)
		m.BytesCompleted.Add(bytes)
	} else {
		m.CompletionErrs.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordQueueDepth records current pending-queue depth for statistics.
func (m *Metrics) RecordQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)

	for {
		current := m.MaxQueueDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)

	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop records the end of the collection window; Snapshot measures
// uptime up to this point instead of up to now. Engine.Close does not
// call it.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	SubmitCalls    uint64
	FragmentsSent  uint64
	SubmitErrors   uint64
	CompletionsOK  uint64
	CompletionErrs uint64
	BytesCompleted uint64

	AvgQueueDepth float64
	MaxQueueDepth uint32

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	RequestsPerSec float64
	Bandwidth      float64
	ErrorRate      float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		SubmitCalls:    m.SubmitCalls.Load(),
		FragmentsSent:  m.FragmentsSent.Load(),
		SubmitErrors:   m.SubmitErrors.Load(),
		CompletionsOK:  m.CompletionsOK.Load(),
		CompletionErrs: m.CompletionErrs.Load(),
		BytesCompleted: m.BytesCompleted.Load(),
		MaxQueueDepth:  m.MaxQueueDepth.Load(),
	}

	queueDepthTotal := m.QueueDepthTotal.Load()
	queueDepthCount := m.QueueDepthCount.Load()
	if queueDepthCount > 0 {
		snap.AvgQueueDepth = float64(queueDepthTotal) / float64(queueDepthCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.RequestsPerSec = float64(opCount) / uptimeSeconds
		snap.Bandwidth = float64(snap.BytesCompleted) / uptimeSeconds
	}

	totalCompletions := snap.CompletionsOK + snap.CompletionErrs
	if totalCompletions > 0 {
		snap.ErrorRate = float64(snap.CompletionErrs) / float64(totalCompletions) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}

	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters (useful for testing).
func (m *Metrics) Reset() {
	m.SubmitCalls.Store(0)
	m.FragmentsSent.Store(0)
	m.SubmitErrors.Store(0)
	m.CompletionsOK.Store(0)
	m.CompletionErrs.Store(0)
	m.BytesCompleted.Store(0)
	m.QueueDepthTotal.Store(0)
	m.QueueDepthCount.Store(0)
	m.MaxQueueDepth.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection for an Engine.
type Observer interface {
	// ObserveSubmit is called for each accepted Submit call.
	ObserveSubmit(fragments int, latencyNs uint64, success bool)

	// ObserveComplete is called when a request's completion closure fires.
	ObserveComplete(bytes uint64, latencyNs uint64, success bool)

	// ObserveQueueDepth is called periodically with the pending-queue depth.
	ObserveQueueDepth(depth uint32)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveSubmit(int, uint64, bool)    {}
func (NoOpObserver) ObserveComplete(uint64, uint64, bool) {}
func (NoOpObserver) ObserveQueueDepth(uint32)           {}

// MetricsObserver implements the Observer contract using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveSubmit(fragments int, latencyNs uint64, success bool) {
	o.metrics.RecordSubmit(fragments, success)
}

func (o *MetricsObserver) ObserveComplete(bytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordComplete(bytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveQueueDepth(depth uint32) {
	o.metrics.RecordQueueDepth(depth)
}

// Compile-time interface checks.
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
