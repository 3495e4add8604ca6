package circuitbreaker

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/altairlabs/lib-resilience/resilience/log"
)

// MetricsListener exports circuit breaker state changes through an
// OpenTelemetry meter. Register it on a Manager to record every transition
// and track how many breakers are currently open.
type MetricsListener struct {
	transitions metric.Int64Counter
	openCount   metric.Int64UpDownCounter
	logger      log.Logger
}

// Compile-time assertion: *MetricsListener implements StateChangeListener.
var _ StateChangeListener = (*MetricsListener)(nil)

// NewMetricsListener creates instruments on the given meter.
func NewMetricsListener(meter metric.Meter, logger log.Logger) (*MetricsListener, error) {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	transitions, err := meter.Int64Counter(
		"circuitbreaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transitions counter: %w", err)
	}

	openCount, err := meter.Int64UpDownCounter(
		"circuitbreaker.open",
		metric.WithDescription("Number of circuit breakers currently open"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating open counter: %w", err)
	}

	return &MetricsListener{
		transitions: transitions,
		openCount:   openCount,
		logger:      logger,
	}, nil
}

// OnStateChange implements the StateChangeListener interface.
func (m *MetricsListener) OnStateChange(operation string, from State, to State) {
	ctx := context.Background()

	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))

	operationAttr := metric.WithAttributes(attribute.String("operation", operation))

	if to == StateOpen {
		m.openCount.Add(ctx, 1, operationAttr)
	}

	if from == StateOpen {
		m.openCount.Add(ctx, -1, operationAttr)
	}

	m.logger.Debugf("Recorded state transition for %s: %s -> %s", operation, from, to)
}
