// Package metrics defines the Prometheus collectors exported by the
// trustpub service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeysetRefreshTotal counts keyset refresh attempts by outcome.
	//
	// Example usage:
	// metrics.KeysetRefreshTotal.WithLabelValues("github", "cooldown").Inc()
	KeysetRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustpub_keyset_refresh_total",
			Help: "Number of keyset refresh attempts by provider and outcome.",
		},
		[]string{"provider", "status"},
	)

	// KeyLookupMissesTotal counts key id lookups that still missed
	// after a refresh-and-recheck.
	KeyLookupMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustpub_key_lookup_misses_total",
			Help: "Number of key id lookups that missed after a keyset refresh.",
		},
		[]string{"provider"},
	)

	// TokenVerificationsTotal counts token signature verifications by
	// outcome.
	//
	// Example usage:
	// metrics.TokenVerificationsTotal.WithLabelValues("github", "invalid_signature").Inc()
	TokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustpub_token_verifications_total",
			Help: "Number of token signature verifications by provider and outcome.",
		},
		[]string{"provider", "status"},
	)

	// ProviderMatchTotal counts attempts to resolve verified claims to
	// a registered provider.
	ProviderMatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustpub_provider_match_total",
			Help: "Number of provider match attempts by provider and outcome.",
		},
		[]string{"provider", "status"},
	)

	// KeystoreRequestDuration is a histogram that tracks the latency of
	// requests from trustpub to the keyset cache.
	KeystoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustpub_keystore_request_duration",
			Help:    "A histogram of request latency to the keyset cache.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "status"},
	)

	// RequestHandlerDuration is a histogram that tracks the latency of
	// each request handler.
	RequestHandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "trustpub_request_handler_duration",
			Help: "A histogram of latencies for each request handler.",
		},
		[]string{"path", "code"},
	)
)
