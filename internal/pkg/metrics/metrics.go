// Package metrics defines and registers all custom Prometheus metrics for the
// company directory API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; GET /metrics serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "company_api"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern (e.g. "/api/v1/company/:id")
//   - code: status class ("2xx", "4xx", "5xx")
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status class.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures request latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials.
// Label:
//   - reason: the resolver failure kind (e.g. "expired_token", "principal_not_found")
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the principal resolver.",
	},
	[]string{"reason"},
)

// ── Company metrics ───────────────────────────────────────────────────────────

// CompaniesCreatedTotal counts newly created companies.
// Label:
//   - tier: "free" or "premium"
var CompaniesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "companies_created_total",
		Help:      "Total number of companies created, by owner tier.",
	},
	[]string{"tier"},
)

// QuotaRejectionsTotal counts creations refused by the tier quota.
var QuotaRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_rejections_total",
		Help:      "Total number of company creations rejected by the tier quota.",
	},
	[]string{"tier"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts upload attempts.
// Labels:
//   - slot: "logo" or "banner"
//   - result: "ok", "rejected" (policy violation) or "error" (remote failure)
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of media uploads, by slot and result.",
	},
	[]string{"slot", "result"},
)

// MediaCleanupFailuresTotal counts previous assets that could not be deleted
// after a replacement. Each one is an orphan on the media host.
var MediaCleanupFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_cleanup_failures_total",
		Help:      "Total number of replaced media assets whose deletion failed.",
	},
	[]string{"slot"},
)

// MediaUploadDuration measures remote upload latency.
var MediaUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_upload_duration_seconds",
		Help:      "Duration of uploads to the media host.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"slot"},
)
