package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	membersCheckedIn metric.Int64Counter
	membersAdded     metric.Int64Counter
	membersAutofixed metric.Int64Counter
	queryDuration    metric.Float64Histogram
	queryErrors      metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.membersCheckedIn, err = meter.Int64Counter(
		"socman.members.checked_in",
		metric.WithDescription("Total number of attendance stamps written"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, err
	}

	m.membersAdded, err = meter.Int64Counter(
		"socman.members.added",
		metric.WithDescription("Total number of new member records inserted"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, err
	}

	m.membersAutofixed, err = meter.Int64Counter(
		"socman.members.autofixed",
		metric.WithDescription("Total number of member records reconciled by autofix"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 1ms, 5ms, 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s
	m.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		return nil, err
	}

	m.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("Database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordCheckIn(ctx context.Context, authority string) {
	if m != nil && m.membersCheckedIn != nil {
		m.membersCheckedIn.Add(ctx, 1, metric.WithAttributes(attribute.String("authority", authority)))
	}
}

func (m *Metrics) RecordMemberAdded(ctx context.Context) {
	if m != nil && m.membersAdded != nil {
		m.membersAdded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAutofix(ctx context.Context, authority string) {
	if m != nil && m.membersAutofixed != nil {
		m.membersAutofixed.Add(ctx, 1, metric.WithAttributes(attribute.String("authority", authority)))
	}
}

func (m *Metrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if m == nil || m.queryDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", table),
	}

	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil && m.queryErrors != nil {
		errAttrs := append(attrs, attribute.String("error", err.Error()))
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
