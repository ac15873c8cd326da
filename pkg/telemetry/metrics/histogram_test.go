package metrics

import (
	"testing"
	"time"
)

func TestHistogramCumulativeBuckets(t *testing.T) {
	r := newTestRegistry()
	h := r.Histogram("request_duration_ms", "", nil, []float64{1, 5, 10})

	for _, v := range []float64{0.5, 3, 7, 12} {
		h.Observe(v)
	}

	tests := []struct {
		le   float64
		want uint64
	}{
		{le: 1, want: 1},
		{le: 5, want: 2},
		{le: 10, want: 3},
	}
	for _, tt := range tests {
		got, ok := h.BucketCount(tt.le)
		if !ok {
			t.Fatalf("BucketCount(%v) missing bucket", tt.le)
		}
		if got != tt.want {
			t.Errorf("BucketCount(%v) = %d, want %d", tt.le, got, tt.want)
		}
	}

	if h.Count() != 4 {
		t.Errorf("Count() = %d, want 4", h.Count())
	}
	if h.Sum() != 22.5 {
		t.Errorf("Sum() = %v, want 22.5", h.Sum())
	}
}

func TestHistogramSortsBuckets(t *testing.T) {
	r := newTestRegistry()
	h := r.Histogram("latency_ms", "", nil, []float64{10, 1, 5})

	buckets := h.Buckets()
	for i := 1; i < len(buckets); i++ {
		if buckets[i-1] >= buckets[i] {
			t.Fatalf("buckets not ascending: %v", buckets)
		}
	}
}

func TestHistogramPercentiles(t *testing.T) {
	r := newTestRegistry()
	h := r.Histogram("latency_ms", "", nil, []float64{50, 100})

	for i := 1; i <= 100; i++ {
		h.Observe(float64(i))
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{p: 50, want: 50},
		{p: 90, want: 90},
		{p: 99, want: 99},
		{p: 100, want: 100},
	}
	for _, tt := range tests {
		if got := h.Percentile(tt.p); got != tt.want {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestHistogramPercentileEmpty(t *testing.T) {
	r := newTestRegistry()
	h := r.Histogram("latency_ms", "", nil, nil)

	if got := h.Percentile(99); got != 0 {
		t.Errorf("Percentile(99) with no samples = %v, want 0", got)
	}
}

func TestHistogramSampleBufferRolls(t *testing.T) {
	h := newHistogram("latency_ms", "", nil, []float64{100}, 10)

	for i := 1; i <= 20; i++ {
		h.Observe(float64(i))
	}

	// Only the ten most recent observations (11..20) remain.
	if got := h.Percentile(100); got != 20 {
		t.Errorf("Percentile(100) = %v, want 20", got)
	}
	if got := h.Percentile(1); got != 11 {
		t.Errorf("Percentile(1) = %v, want 11", got)
	}
	// Count and sum still cover every observation.
	if h.Count() != 20 {
		t.Errorf("Count() = %d, want 20", h.Count())
	}
}

func TestTimerRecordsDurations(t *testing.T) {
	r := newTestRegistry()
	timer := r.Timer("db_query_duration_ms", "", nil, []float64{1000})

	id := timer.Start()
	time.Sleep(time.Millisecond)
	d := timer.End(id)

	if d <= 0 {
		t.Fatalf("End() duration = %v, want positive", d)
	}
	if timer.Histogram().Count() != 1 {
		t.Errorf("histogram count = %d, want 1", timer.Histogram().Count())
	}
}

func TestTimerUnknownID(t *testing.T) {
	r := newTestRegistry()
	timer := r.Timer("db_query_duration_ms", "", nil, nil)

	if d := timer.End("no-such-id"); d != 0 {
		t.Errorf("End(unknown) = %v, want 0", d)
	}
	if timer.Histogram().Count() != 0 {
		t.Error("unknown id recorded an observation")
	}
}

func TestTimerTimeWrapsFunction(t *testing.T) {
	r := newTestRegistry()
	timer := r.Timer("db_query_duration_ms", "", nil, nil)

	err := timer.Time(func() error { return nil })
	if err != nil {
		t.Fatalf("Time() error = %v", err)
	}
	if timer.Histogram().Count() != 1 {
		t.Errorf("histogram count = %d, want 1", timer.Histogram().Count())
	}
	if timer.ActiveCount() != 0 {
		t.Errorf("active timers = %d, want 0", timer.ActiveCount())
	}
}
