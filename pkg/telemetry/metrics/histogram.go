package metrics

import (
	"math"
	"sort"
	"sync"
)

// Histogram is a bucketed distribution with a running count and sum.
//
// Bucket boundaries are fixed at creation time and ascending. Bucket
// counts are cumulative: counts[i] is the number of observations less
// than or equal to buckets[i]. A capped rolling sample buffer retains
// the most recent observations for approximate percentile estimation.
//
// Histogram is safe for concurrent use.
type Histogram struct {
	name        string
	description string
	labels      map[string]string
	buckets     []float64

	mu        sync.Mutex
	counts    []uint64
	count     uint64
	sum       float64
	samples   []float64
	sampleCap int
	sampleIdx int
}

func newHistogram(name, description string, labels map[string]string, buckets []float64, sampleCap int) *Histogram {
	if sampleCap <= 0 {
		sampleCap = 1000
	}

	bs := make([]float64, len(buckets))
	copy(bs, buckets)
	sort.Float64s(bs)

	return &Histogram{
		name:        name,
		description: description,
		labels:      copyLabels(labels),
		buckets:     bs,
		counts:      make([]uint64, len(bs)),
		sampleCap:   sampleCap,
	}
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Type returns TypeHistogram.
func (h *Histogram) Type() MetricType { return TypeHistogram }

// Description returns the help text.
func (h *Histogram) Description() string { return h.description }

// Labels returns the label set.
func (h *Histogram) Labels() map[string]string { return h.labels }

// Buckets returns the ascending bucket boundaries.
func (h *Histogram) Buckets() []float64 { return h.buckets }

// Observe records a value: count and sum advance, every bucket whose
// boundary is >= v is incremented, and the value enters the sample buffer.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	h.sum += v

	for i, le := range h.buckets {
		if v <= le {
			h.counts[i]++
		}
	}

	if len(h.samples) < h.sampleCap {
		h.samples = append(h.samples, v)
		return
	}
	// Buffer full: overwrite the oldest entry.
	h.samples[h.sampleIdx] = v
	h.sampleIdx = (h.sampleIdx + 1) % h.sampleCap
}

// Count returns the total number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

// BucketCount returns the cumulative count for the bucket with boundary le.
// The second return value is false when no bucket has that boundary.
func (h *Histogram) BucketCount(le float64) (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, b := range h.buckets {
		if b == le {
			return h.counts[i], true
		}
	}
	return 0, false
}

// Percentile estimates the p-th percentile (0 < p <= 100) from the
// rolling sample buffer. The estimate is approximate: it reflects only
// the most recent observations, sorted on demand. Returns 0 when no
// samples have been recorded.
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.Lock()
	samples := make([]float64, len(h.samples))
	copy(samples, h.samples)
	h.mu.Unlock()

	if len(samples) == 0 {
		return 0
	}

	sort.Float64s(samples)
	idx := int(math.Ceil(p/100*float64(len(samples)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}

// snapshot returns a consistent view of the histogram state.
func (h *Histogram) snapshot() histogramSnapshot {
	h.mu.Lock()
	counts := make([]uint64, len(h.counts))
	copy(counts, h.counts)
	count := h.count
	sum := h.sum
	h.mu.Unlock()

	return histogramSnapshot{
		buckets: h.buckets,
		counts:  counts,
		count:   count,
		sum:     sum,
	}
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	count   uint64
	sum     float64
}
