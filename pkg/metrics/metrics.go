// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for split and merge
// operations. The CLI is short lived, so metrics are collected in a private
// registry and exported through the node_exporter textfile collector with
// WriteTextfile rather than served over HTTP.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all seedshare metrics
	Namespace = "seedshare"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelReason    = "reason"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit        = "split"
	OpCombine      = "combine"
	OpDeriveSeed   = "derive_seed"
	OpSessionAdd   = "session_add"
	OpGenerate     = "generate"
	OpMnemonicSeed = "mnemonic_seed"
)

var (
	// Registry holds every seedshare collector.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// OperationsTotal tracks operations by type and status.
	OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of seedshare operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds.
	// Seed derivation dominates; the buckets cover PBKDF2 at 20000 rounds.
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of seedshare operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal tracks errors by operation and error type.
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// SharesGenerated counts shares produced by splits.
	SharesGenerated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_generated_total",
			Help:      "Total number of shares produced by split operations",
		},
	)

	// SharesAccepted counts shares accepted into reconstruction sessions.
	SharesAccepted = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_accepted_total",
			Help:      "Total number of shares accepted into reconstruction sessions",
		},
	)

	// SharesRejected counts session entries rejected by reason.
	SharesRejected = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_rejected_total",
			Help:      "Total number of shares rejected by reconstruction sessions",
		},
		[]string{LabelReason},
	)

	// SecretBytes observes the length of split and reconstructed secrets.
	SecretBytes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "secret_bytes",
			Help:      "Length in bytes of secrets processed",
			Buckets:   []float64{16, 20, 24, 28, 32, 48, 64, 128},
		},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration in seconds.
//
// Example:
//
//	start := time.Now()
//	shares, err := engine.SplitEntropy(secret, 2, 3)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation(metrics.OpSplit, status, time.Since(start).Seconds())
func RecordOperation(operation, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error of errorType during operation.
func RecordError(operation, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordSplit records a completed split of a secretLen-byte secret.
func RecordSplit(secretLen, shares int) {
	if !enabled.Load() {
		return
	}
	SharesGenerated.Add(float64(shares))
	SecretBytes.Observe(float64(secretLen))
}

// RecordShareAccepted records a share accepted by a session.
func RecordShareAccepted() {
	if !enabled.Load() {
		return
	}
	SharesAccepted.Inc()
}

// RecordShareRejected records a share rejected by a session.
func RecordShareRejected(reason string) {
	if !enabled.Load() {
		return
	}
	SharesRejected.WithLabelValues(reason).Inc()
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
