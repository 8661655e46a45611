package aio

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.SubmitCalls != 0 {
		t.Errorf("Expected 0 initial submits, got %d", snap.SubmitCalls)
	}

	m.RecordSubmit(4, true)
	m.RecordSubmit(2, true)
	m.RecordSubmit(1, false)

	snap = m.Snapshot()
	if snap.SubmitCalls != 3 {
		t.Errorf("Expected 3 submit calls, got %d", snap.SubmitCalls)
	}
	if snap.FragmentsSent != 6 {
		t.Errorf("Expected 6 fragments sent, got %d", snap.FragmentsSent)
	}
	if snap.SubmitErrors != 1 {
		t.Errorf("Expected 1 submit error, got %d", snap.SubmitErrors)
	}
}

func TestMetricsComplete(t *testing.T) {
	m := NewMetrics()

	m.RecordComplete(1024, 1_000_000, true)
	m.RecordComplete(2048, 2_000_000, true)
	m.RecordComplete(0, 500_000, false)

	snap := m.Snapshot()
	if snap.CompletionsOK != 2 {
		t.Errorf("Expected 2 successful completions, got %d", snap.CompletionsOK)
	}
	if snap.CompletionErrs != 1 {
		t.Errorf("Expected 1 failed completion, got %d", snap.CompletionErrs)
	}
	if snap.BytesCompleted != 3072 {
		t.Errorf("Expected 3072 bytes completed, got %d", snap.BytesCompleted)
	}

	expectedErrorRate := float64(1) / float64(3) * 100.0
	if snap.ErrorRate < expectedErrorRate-0.1 || snap.ErrorRate > expectedErrorRate+0.1 {
		t.Errorf("Expected error rate ~%.1f%%, got %.1f%%", expectedErrorRate, snap.ErrorRate)
	}
}

func TestMetricsQueueDepth(t *testing.T) {
	m := NewMetrics()

	m.RecordQueueDepth(10)
	m.RecordQueueDepth(20)
	m.RecordQueueDepth(15)

	snap := m.Snapshot()

	if snap.MaxQueueDepth != 20 {
		t.Errorf("Expected max queue depth 20, got %d", snap.MaxQueueDepth)
	}

	expectedAvg := float64(10+20+15) / 3.0
	if snap.AvgQueueDepth < expectedAvg-0.1 || snap.AvgQueueDepth > expectedAvg+0.1 {
		t.Errorf("Expected avg queue depth %.1f, got %.1f", expectedAvg, snap.AvgQueueDepth)
	}
}

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordComplete(1024, 1_000_000, true)
	m.RecordComplete(1024, 2_000_000, true)

	snap := m.Snapshot()

	expectedAvgNs := uint64(1_500_000)
	if snap.AvgLatencyNs != expectedAvgNs {
		t.Errorf("Expected avg latency %d ns, got %d ns", expectedAvgNs, snap.AvgLatencyNs)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*1000000 {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)

	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+2*1000000 {
		t.Errorf("Uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordSubmit(2, true)
	m.RecordComplete(1024, 1_000_000, true)
	m.RecordQueueDepth(10)

	snap := m.Snapshot()
	if snap.SubmitCalls == 0 {
		t.Error("Expected some operations before reset")
	}

	m.Reset()

	snap = m.Snapshot()
	if snap.SubmitCalls != 0 {
		t.Errorf("Expected 0 submit calls after reset, got %d", snap.SubmitCalls)
	}
	if snap.BytesCompleted != 0 {
		t.Errorf("Expected 0 bytes after reset, got %d", snap.BytesCompleted)
	}
	if snap.MaxQueueDepth != 0 {
		t.Errorf("Expected 0 max queue depth after reset, got %d", snap.MaxQueueDepth)
	}
}

func TestObserver(t *testing.T) {
	observer := &NoOpObserver{}
	observer.ObserveSubmit(1, 1000, true)
	observer.ObserveComplete(1024, 1000000, true)
	observer.ObserveQueueDepth(10)

	m := NewMetrics()
	metricsObserver := NewMetricsObserver(m)

	metricsObserver.ObserveSubmit(2, 0, true)
	metricsObserver.ObserveComplete(2048, 2_000_000, true)

	snap := m.Snapshot()
	if snap.SubmitCalls != 1 {
		t.Errorf("Expected 1 submit call from observer, got %d", snap.SubmitCalls)
	}
	if snap.FragmentsSent != 2 {
		t.Errorf("Expected 2 fragments from observer, got %d", snap.FragmentsSent)
	}
	if snap.BytesCompleted != 2048 {
		t.Errorf("Expected 2048 bytes from observer, got %d", snap.BytesCompleted)
	}
}

func TestMetricsRates(t *testing.T) {
	m := NewMetrics()

	startTime := time.Now()
	m.StartTime.Store(startTime.UnixNano())

	m.RecordComplete(1024, 1_000_000, true)
	m.RecordComplete(2048, 2_000_000, true)

	stopTime := startTime.Add(1 * time.Second)
	m.StopTime.Store(stopTime.UnixNano())

	snap := m.Snapshot()

	if snap.RequestsPerSec < 1.9 || snap.RequestsPerSec > 2.1 {
		t.Errorf("Expected RequestsPerSec ~2.0, got %.2f", snap.RequestsPerSec)
	}

	if snap.Bandwidth < 3000 || snap.Bandwidth > 3100 {
		t.Errorf("Expected Bandwidth ~3072, got %.2f", snap.Bandwidth)
	}
}

func TestMetricsHistogram(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordComplete(1024, 500_000, true) // 500us
	}
	for i := 0; i < 49; i++ {
		m.RecordComplete(1024, 5_000_000, true) // 5ms
	}
	m.RecordComplete(1024, 50_000_000, true) // 50ms (P99)

	snap := m.Snapshot()

	if snap.CompletionsOK != 100 {
		t.Errorf("Expected 100 completions, got %d", snap.CompletionsOK)
	}

	if snap.LatencyP50Ns < 100_000 || snap.LatencyP50Ns > 1_000_000 {
		t.Errorf("Expected P50 in 100us-1ms range, got %d ns", snap.LatencyP50Ns)
	}

	if snap.LatencyP99Ns < 5_000_000 || snap.LatencyP99Ns > 100_000_000 {
		t.Errorf("Expected P99 in 5ms-100ms range, got %d ns", snap.LatencyP99Ns)
	}

	totalInBuckets := uint64(0)
	for i := 0; i < len(snap.LatencyHistogram); i++ {
		totalInBuckets += snap.LatencyHistogram[i]
	}
	if totalInBuckets == 0 {
		t.Error("Expected histogram buckets to be populated")
	}
}
