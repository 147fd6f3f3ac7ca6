// Package metrics holds the Prometheus collectors shared by the HTTP layer,
// the Medusa client and the workflow engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fittinglab/storefront/internal/workflow"
)

const namespace = "storefront"

var (
	// Registry holds the application collectors; /api/metrics serves it.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "medusa",
			Name:      "request_duration_seconds",
			Help:      "Duration of Medusa API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"scope", "method", "status"},
	)

	workflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Workflow executions by final status.",
		},
		[]string{"workflow", "status"},
	)

	workflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "run_duration_seconds",
			Help:      "Duration of workflow executions.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"workflow"},
	)

	workflowStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "step_failures_total",
			Help:      "Failed workflow steps.",
		},
		[]string{"workflow", "step"},
	)

	workflowCompensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "compensations_total",
			Help:      "Compensations run, by outcome.",
		},
		[]string{"workflow", "step", "success"},
	)

	catalogCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "cache_lookups_total",
			Help:      "Catalog cache lookups by tier and result.",
		},
		[]string{"tier", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		upstreamDuration,
		workflowRuns,
		workflowDuration,
		workflowStepFailures,
		workflowCompensations,
		catalogCache,
	)
}

// Middleware records request counts and latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one Medusa API call. status is 0 for transport errors.
func ObserveUpstream(scope, method string, status int, took time.Duration) {
	upstreamDuration.WithLabelValues(scope, method, strconv.Itoa(status)).Observe(took.Seconds())
}

// ObserveCache counts a catalog cache lookup.
func ObserveCache(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	catalogCache.WithLabelValues(tier, result).Inc()
}

// WorkflowObserver feeds workflow engine events into Prometheus.
type WorkflowObserver struct{}

func (WorkflowObserver) WorkflowFinished(wf string, status workflow.Status, took time.Duration) {
	workflowRuns.WithLabelValues(wf, string(status)).Inc()
	workflowDuration.WithLabelValues(wf).Observe(took.Seconds())
}

func (WorkflowObserver) StepFailed(wf, step string) {
	workflowStepFailures.WithLabelValues(wf, step).Inc()
}

func (WorkflowObserver) Compensated(wf, step string, ok bool) {
	workflowCompensations.WithLabelValues(wf, step, strconv.FormatBool(ok)).Inc()
}

var _ workflow.Observer = WorkflowObserver{}
