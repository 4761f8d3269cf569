package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "procure"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec

	lineLogins    *prometheus.CounterVec
	bindings      *prometheus.CounterVec
	approvals     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	outbox        *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry:      r,
		httpReqCnt:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDur:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"}),
		httpInfl:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"}),
		lineLogins:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "line_logins_total", Help: "LINE session exchanges by result."}, []string{"result"}),
		bindings:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "line_bindings_total", Help: "Phone-to-LINE binding attempts by result."}, []string{"result"}),
		approvals:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "approvals_total", Help: "Remote approvals by document type and state."}, []string{"type", "state"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "line_notifications_total", Help: "LINE push notifications by document type and result."}, []string{"type", "result"}),
		outbox:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "outbox_entries_total", Help: "Outbox entries processed by outcome."}, []string{"outcome"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl, m.lineLogins, m.bindings, m.approvals, m.notifications, m.outbox)
	return m
}

func (m *Metrics) LineLogin(result string) {
	if m != nil {
		m.lineLogins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Binding(result string) {
	if m != nil {
		m.bindings.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Approval(docType, state string) {
	if m != nil {
		m.approvals.WithLabelValues(docType, state).Inc()
	}
}

func (m *Metrics) Notification(docType, result string) {
	if m != nil {
		m.notifications.WithLabelValues(docType, result).Inc()
	}
}

func (m *Metrics) Outbox(outcome string) {
	if m != nil {
		m.outbox.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
