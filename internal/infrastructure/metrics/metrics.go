package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dashboard metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "uploads_total",
			Help:      "Total object uploads",
		},
		[]string{"status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
	)

	// Storage API operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "storage_operations_total",
			Help:      "Total storage API operations",
		},
		[]string{"operation", "status"},
	)

	// Storage API operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "storage_duration_seconds",
			Help:      "Storage API operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	// Keys observed by listings
	ListingScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "listing_keys_total",
			Help:      "Keys observed by object listings, by outcome",
		},
		[]string{"outcome"},
	)

	// Account API requests
	AccountAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "account_api_requests_total",
			Help:      "Total Cloudflare account API requests",
		},
		[]string{"operation", "status"},
	)

	// Background stats refreshes
	StatsRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "r2",
			Subsystem: "dashboard",
			Name:      "stats_refresh_total",
			Help:      "Total scheduled bucket stats refreshes",
		},
		[]string{"status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records an object upload
func RecordUpload(status string, bytes int64) {
	UploadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		UploadBytesTotal.Add(float64(bytes))
	}
}

// RecordStorageOperation records a storage API call
func RecordStorageOperation(operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordListing records how many scanned keys matched the listing filters
func RecordListing(scanned, matched int) {
	ListingScannedTotal.WithLabelValues("matched").Add(float64(matched))
	ListingScannedTotal.WithLabelValues("filtered").Add(float64(max(scanned-matched, 0)))
}

// RecordAccountAPIRequest records a Cloudflare account API call
func RecordAccountAPIRequest(operation, status string) {
	AccountAPIRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordStatsRefresh records a scheduled stats refresh run
func RecordStatsRefresh(status string) {
	StatsRefreshTotal.WithLabelValues(status).Inc()
}
