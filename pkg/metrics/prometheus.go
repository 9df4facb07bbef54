package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
)

// PrometheusExporter exports collector metrics in Prometheus text format.
type PrometheusExporter struct {
	collector *Collector
	namespace string
}

// NewPrometheusExporter creates an exporter for the given collector. The
// namespace is prepended to all metric names (e.g., "bb84_sim").
func NewPrometheusExporter(c *Collector, namespace string) *PrometheusExporter {
	return &PrometheusExporter{collector: c, namespace: namespace}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		e.WriteMetrics(w)
	})
}

// WriteMetrics writes all metrics in Prometheus text format to the writer.
func (e *PrometheusExporter) WriteMetrics(w io.Writer) {
	snap := e.collector.Snapshot()
	labels := e.formatLabels(snap.Labels)

	counters := []struct {
		name, help string
		value      uint64
	}{
		{"runs_total", "Total protocol runs attempted", snap.RunsTotal},
		{"runs_failed_total", "Total protocol runs rejected or failed", snap.RunsFailed},
		{"qubits_simulated_total", "Total qubits prepared and measured", snap.QubitsSimulated},
		{"sifted_bits_total", "Total bits surviving basis sifting", snap.SiftedBits},
		{"eve_intercepts_total", "Total qubits intercepted by Eve", snap.EveIntercepts},
		{"encrypt_ops_total", "Total encryption operations", snap.EncryptOps},
		{"decrypt_ops_total", "Total decryption operations", snap.DecryptOps},
		{"encrypt_errors_total", "Total failed encryption operations", snap.EncryptErrors},
		{"decrypt_errors_total", "Total failed decryption operations", snap.DecryptErrors},
		{"auth_failures_total", "Total AEAD tag verification failures", snap.AuthFailures},
	}
	for _, c := range counters {
		e.writeHelp(w, c.name, c.help)
		e.writeType(w, c.name, "counter")
		e.writeMetric(w, c.name, labels, float64(c.value))
	}

	e.writeHelp(w, "uptime_seconds", "Seconds since the collector was created")
	e.writeType(w, "uptime_seconds", "gauge")
	e.writeMetric(w, "uptime_seconds", labels, snap.Uptime.Seconds())

	e.writeHistogram(w, "qber", "Quantum bit error rate per run", labels, snap.QBER)
	e.writeHistogram(w, "run_latency_microseconds", "Protocol run duration", labels, snap.Latency)
}

func (e *PrometheusExporter) writeHistogram(w io.Writer, name, help string, labels string, buckets []Bucket) {
	e.writeHelp(w, name, help)
	e.writeType(w, name, "histogram")

	for _, b := range buckets {
		le := "+Inf"
		if !math.IsInf(b.UpperBound, 1) {
			le = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", b.UpperBound), "0"), ".")
		}
		bucketLabels := mergeLabel(labels, fmt.Sprintf("le=%q", le))
		fmt.Fprintf(w, "%s_bucket%s %d\n", e.qualify(name), bucketLabels, b.Count)
	}
}

func (e *PrometheusExporter) writeHelp(w io.Writer, name, help string) {
	fmt.Fprintf(w, "# HELP %s %s\n", e.qualify(name), help)
}

func (e *PrometheusExporter) writeType(w io.Writer, name, typ string) {
	fmt.Fprintf(w, "# TYPE %s %s\n", e.qualify(name), typ)
}

func (e *PrometheusExporter) writeMetric(w io.Writer, name, labels string, value float64) {
	fmt.Fprintf(w, "%s%s %g\n", e.qualify(name), labels, value)
}

func (e *PrometheusExporter) qualify(name string) string {
	if e.namespace == "" {
		return name
	}
	return e.namespace + "_" + name
}

func (e *PrometheusExporter) formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func mergeLabel(existing, extra string) string {
	if existing == "" {
		return "{" + extra + "}"
	}
	return strings.TrimSuffix(existing, "}") + "," + extra + "}"
}
