// Package metrics exposes Prometheus counters for credential issuance,
// rejections and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers and middleware report to.
type Recorder interface {
	RecordIssued(kind string)
	RecordRejection(reason string)
	RecordHTTPResponse(route string, status int, d time.Duration)
}

// Credential kinds for RecordIssued.
const (
	KindSession      = "session"
	KindCode         = "authorization_code"
	KindVerification = "verification"
	KindAccessToken  = "access_token"
)

type Collector struct {
	issued      *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	responses   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// NewCollector registers the collector's metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omhauth_credentials_issued_total",
			Help: "Credentials issued, by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omhauth_rejections_total",
			Help: "Rejected requests, by reason.",
		}, []string{"reason"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omhauth_http_responses_total",
			Help: "HTTP responses, by route and status code.",
		}, []string{"route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "omhauth_http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(c.issued, c.rejections, c.responses, c.httpLatency)
	return c
}

func (c *Collector) RecordIssued(kind string) {
	c.issued.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordHTTPResponse(route string, status int, d time.Duration) {
	c.responses.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the Prometheus exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
