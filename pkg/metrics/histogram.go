package metrics

import (
	"math"
	"sort"
	"sync"
)

// Histogram tracks the distribution of values across predefined buckets.
// Thread-safe for concurrent use.
type Histogram struct {
	mu      sync.RWMutex
	buckets []float64 // upper bounds
	counts  []uint64  // count per bucket, plus overflow
	sum     float64
	count   uint64
}

// NewHistogram creates a histogram with the given bucket upper bounds.
func NewHistogram(buckets []float64) *Histogram {
	b := make([]float64, len(buckets))
	copy(b, buckets)
	sort.Float64s(b)
	return &Histogram{
		buckets: b,
		counts:  make([]uint64, len(b)+1), // +1 for overflow bucket
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[sort.SearchFloat64s(h.buckets, v)]++
	h.sum += v
	h.count++
}

// Count returns the total number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sum
}

// Mean returns the average observed value, or 0 with no observations.
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return 0
	}
	return h.sum / float64(h.count)
}

// Bucket is one cumulative histogram bucket.
type Bucket struct {
	UpperBound float64 // +Inf for the overflow bucket
	Count      uint64  // cumulative count of observations ≤ UpperBound
}

// Buckets returns cumulative bucket counts in Prometheus convention.
func (h *Histogram) Buckets() []Bucket {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Bucket, 0, len(h.buckets)+1)
	cum := uint64(0)
	for i, ub := range h.buckets {
		cum += h.counts[i]
		out = append(out, Bucket{UpperBound: ub, Count: cum})
	}
	cum += h.counts[len(h.buckets)]
	out = append(out, Bucket{UpperBound: infUpperBound, Count: cum})
	return out
}

// infUpperBound marks the overflow bucket.
var infUpperBound = math.Inf(1)
