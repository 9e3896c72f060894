package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the service's Prometheus collectors. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	chartsComputed  *prometheus.CounterVec
	chartErrors     *prometheus.CounterVec
	chartDuration   prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	geocodeRequests *prometheus.CounterVec
	geocodeLatency  prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		chartsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthchart_charts_computed_total",
				Help: "Charts computed, by house system",
			},
			[]string{"house_system"},
		),
		chartErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthchart_chart_errors_total",
				Help: "Chart computations that failed, by error type",
			},
			[]string{"type"},
		),
		chartDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "birthchart_chart_build_seconds",
				Help:    "Time spent building a chart, excluding geocoding",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthchart_cache_lookups_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
		geocodeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthchart_geocode_requests_total",
				Help: "Upstream geocoder requests by result",
			},
			[]string{"result"},
		),
		geocodeLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "birthchart_geocode_request_seconds",
				Help:    "Upstream geocoder latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "birthchart_http_requests_total",
				Help: "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "birthchart_http_request_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (r *Recorder) ChartComputed(houseSystem string, d time.Duration) {
	if r == nil {
		return
	}
	r.chartsComputed.WithLabelValues(houseSystem).Inc()
	r.chartDuration.Observe(d.Seconds())
}

func (r *Recorder) ChartFailed(errorType string) {
	if r == nil {
		return
	}
	r.chartErrors.WithLabelValues(errorType).Inc()
}

func (r *Recorder) CacheLookup(cache string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (r *Recorder) GeocodeRequest(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.geocodeRequests.WithLabelValues(result).Inc()
	r.geocodeLatency.Observe(d.Seconds())
}

func (r *Recorder) HTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, path).Observe(d.Seconds())
}
