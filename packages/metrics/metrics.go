// Package metrics summarizes request latencies for a batch run.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
	sigFigs      = 3
)

// Recorder collects latencies. It is not safe for concurrent use; a
// batch records one request at a time.
type Recorder struct {
	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram
	total     int64
	errors    int64
}

// Summary is a snapshot of recorded latencies.
type Summary struct {
	Count  int64
	Errors int64
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs),
	}
}

// Record adds one request latency. Values outside 1µs..60s are clamped.
func (r *Recorder) Record(duration time.Duration, err error) {
	r.total++
	if err != nil {
		r.errors++
	}

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	_ = r.histogram.RecordValue(latencyUs)
}

func (r *Recorder) Summary() Summary {
	s := Summary{Count: r.total, Errors: r.errors}
	if r.total == 0 {
		return s
	}
	s.P50 = time.Duration(r.histogram.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(r.histogram.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(r.histogram.ValueAtQuantile(99)) * time.Microsecond
	s.Min = time.Duration(r.histogram.Min()) * time.Microsecond
	s.Max = time.Duration(r.histogram.Max()) * time.Microsecond
	s.Mean = time.Duration(r.histogram.Mean()) * time.Microsecond
	return s
}
