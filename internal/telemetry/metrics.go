package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "codeintel.requests.total"
	metricRequestDuration  = "codeintel.request.duration.seconds"
	metricErrorsTotal      = "codeintel.errors.total"
	metricInflightRequests = "codeintel.inflight.requests"

	attrOp     = "op"
	attrStatus = "status"
	statusOK   = "ok"
	statusErr  = "error"
)

// durationBucketBoundaries covers 10ms to 600s, the same range the teacher
// uses for analysis workloads spanning a single-file parse to a full-repo
// IFDS solve.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// REDMetrics holds Rate/Error/Duration instruments shared across every
// caller that wants basic RED observability on a named operation (an MCP
// tool call, an orchestrator stage, a CLI command).
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of errors"), metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records one completed request's outcome and latency.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op string, failed bool, duration time.Duration) {
	status := statusOK
	if failed {
		status = statusErr
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op), attribute.String(attrStatus, status))
	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if failed {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments op's in-flight gauge and returns a function that
// decrements it, meant to be deferred at the call site.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() { rm.inflightRequests.Add(ctx, -1, attrs) }
}
