package metrics

import (
	"sync/atomic"
	"time"
)

// Collector aggregates metrics from protocol runs and cipher operations.
// All methods are safe for concurrent use.
type Collector struct {
	// Protocol run metrics
	runsTotal       atomic.Uint64
	runsFailed      atomic.Uint64
	qubitsSimulated atomic.Uint64
	siftedBits      atomic.Uint64
	eveIntercepts   atomic.Uint64

	// Cipher metrics
	encryptOps    atomic.Uint64
	decryptOps    atomic.Uint64
	encryptErrors atomic.Uint64
	decryptErrors atomic.Uint64
	authFailures  atomic.Uint64

	// Distributions
	qber       *Histogram
	runLatency *Histogram

	createdAt time.Time
	labels    Labels
}

// Labels represents key-value pairs for metric labeling.
type Labels map[string]string

// Default bucket configurations.
var (
	// QBERBuckets spans [0,1]; error rates cluster near 0 (clean channel)
	// and 0.25 (full intercept-resend).
	QBERBuckets = []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.4, 0.5}

	// RunLatencyBuckets for protocol run duration (microseconds).
	RunLatencyBuckets = []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000}
)

// NewCollector creates a new metrics collector.
func NewCollector(labels Labels) *Collector {
	if labels == nil {
		labels = make(Labels)
	}
	return &Collector{
		qber:       NewHistogram(QBERBuckets),
		runLatency: NewHistogram(RunLatencyBuckets),
		createdAt:  time.Now(),
		labels:     labels,
	}
}

// RunCompleted records one successful protocol run.
func (c *Collector) RunCompleted(qubits, sifted, intercepts int, qber float64, d time.Duration) {
	c.runsTotal.Add(1)
	c.qubitsSimulated.Add(uint64(qubits))
	c.siftedBits.Add(uint64(sifted))
	c.eveIntercepts.Add(uint64(intercepts))
	c.qber.Observe(qber)
	c.runLatency.Observe(float64(d.Microseconds()))
}

// RunFailed records a rejected or failed protocol run.
func (c *Collector) RunFailed() {
	c.runsTotal.Add(1)
	c.runsFailed.Add(1)
}

// EncryptCompleted records a successful encryption.
func (c *Collector) EncryptCompleted() {
	c.encryptOps.Add(1)
}

// EncryptFailed records a failed encryption.
func (c *Collector) EncryptFailed() {
	c.encryptOps.Add(1)
	c.encryptErrors.Add(1)
}

// DecryptCompleted records a successful decryption.
func (c *Collector) DecryptCompleted() {
	c.decryptOps.Add(1)
}

// DecryptFailed records a failed decryption; authFailure marks tag
// verification failures specifically.
func (c *Collector) DecryptFailed(authFailure bool) {
	c.decryptOps.Add(1)
	c.decryptErrors.Add(1)
	if authFailure {
		c.authFailures.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	Timestamp time.Time
	Uptime    time.Duration
	Labels    Labels

	RunsTotal       uint64
	RunsFailed      uint64
	QubitsSimulated uint64
	SiftedBits      uint64
	EveIntercepts   uint64

	EncryptOps    uint64
	DecryptOps    uint64
	EncryptErrors uint64
	DecryptErrors uint64
	AuthFailures  uint64

	MeanQBER float64
	QBER     []Bucket
	Latency  []Bucket
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:       time.Now(),
		Uptime:          time.Since(c.createdAt),
		Labels:          c.labels,
		RunsTotal:       c.runsTotal.Load(),
		RunsFailed:      c.runsFailed.Load(),
		QubitsSimulated: c.qubitsSimulated.Load(),
		SiftedBits:      c.siftedBits.Load(),
		EveIntercepts:   c.eveIntercepts.Load(),
		EncryptOps:      c.encryptOps.Load(),
		DecryptOps:      c.decryptOps.Load(),
		EncryptErrors:   c.encryptErrors.Load(),
		DecryptErrors:   c.decryptErrors.Load(),
		AuthFailures:    c.authFailures.Load(),
		MeanQBER:        c.qber.Mean(),
		QBER:            c.qber.Buckets(),
		Latency:         c.runLatency.Buckets(),
	}
}
