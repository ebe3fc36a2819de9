// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the agent service.
//
// # Description
//
// Metrics cover the streaming agent endpoints: request counters by endpoint
// and status, stream duration histograms, active stream gauges, and error
// counters. Exposed via the /metrics endpoint for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "cogentx"

const agentSubsystem = "agent"

// Endpoint labels a streaming agent endpoint for metrics.
type Endpoint string

const (
	// EndpointRun is the new-session endpoint.
	EndpointRun Endpoint = "run"

	// EndpointResume is the resume endpoint.
	EndpointResume Endpoint = "resume"

	// EndpointReset is the session deletion endpoint.
	EndpointReset Endpoint = "reset"
)

// AgentMetrics holds the Prometheus metrics for agent endpoints.
//
// Initialize once at startup via InitMetrics().
type AgentMetrics struct {
	// RequestsTotal counts requests by endpoint and status.
	// Labels: endpoint (run, resume, reset), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// StreamDurationSeconds measures total stream duration.
	// Labels: endpoint (run, resume)
	StreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams gauges currently open SSE streams.
	// Labels: endpoint (run, resume)
	ActiveStreams *prometheus.GaugeVec

	// ErrorsTotal counts errors by endpoint and kind.
	// Labels: endpoint, kind (invalid_session, session_busy, internal)
	ErrorsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *AgentMetrics

// InitMetrics registers the agent metrics with the default registry.
//
// Call exactly once at startup, before the first request.
func InitMetrics() *AgentMetrics {
	DefaultMetrics = &AgentMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "requests_total",
				Help:      "Total agent requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		StreamDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "stream_duration_seconds",
				Help:      "Total SSE stream duration per request",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"endpoint"},
		),
		ActiveStreams: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "active_streams",
				Help:      "Currently open SSE streams",
			},
			[]string{"endpoint"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "errors_total",
				Help:      "Agent request errors by endpoint and kind",
			},
			[]string{"endpoint", "kind"},
		),
	}
	return DefaultMetrics
}

// RecordRequest increments the request counter.
func (m *AgentMetrics) RecordRequest(endpoint Endpoint, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError increments the error counter for the given kind.
func (m *AgentMetrics) RecordError(endpoint Endpoint, kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(string(endpoint), kind).Inc()
}

// StreamStarted marks an SSE stream open.
func (m *AgentMetrics) StreamStarted(endpoint Endpoint) {
	if m == nil {
		return
	}
	m.ActiveStreams.WithLabelValues(string(endpoint)).Inc()
}

// StreamEnded marks an SSE stream closed and records its duration.
func (m *AgentMetrics) StreamEnded(endpoint Endpoint, seconds float64) {
	if m == nil {
		return
	}
	m.ActiveStreams.WithLabelValues(string(endpoint)).Dec()
	m.StreamDurationSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}
