package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestRunStats_Outcome(t *testing.T) {
	tests := []struct {
		stats RunStats
		want  string
	}{
		{RunStats{Equations: 3, Resolved: 3, Unresolved: 0}, OutcomeSolved},
		{RunStats{Equations: 1, Resolved: 0, Unresolved: 0}, OutcomeSolved},
		{RunStats{Equations: 0, Resolved: 0, Unresolved: 0}, OutcomeUnresolved},
		{RunStats{Equations: 2, Resolved: 2, Unresolved: 2}, OutcomePartial},
		{RunStats{Equations: 1, Resolved: 0, Unresolved: 2}, OutcomeUnresolved},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.stats.Outcome(), "%+v", tt.stats)
	}
}

func TestObserveRun(t *testing.T) {
	solved := testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSolved))
	iso := testutil.ToFloat64(ruleContributions.WithLabelValues("IsoscelesBaseAngles"))

	ObserveRun(RunStats{
		Equations: 1,
		Resolved:  2,
		Duration:  time.Millisecond,
		Rules:     []string{"IsoscelesBaseAngles", "IsoscelesBaseAngles"},
	})

	assert.Equal(t, solved+1, testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSolved)))
	assert.Equal(t, iso+2, testutil.ToFloat64(ruleContributions.WithLabelValues("IsoscelesBaseAngles")))
}

func TestObserveFailure(t *testing.T) {
	before := testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeError))
	ObserveFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeError)))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("/v1/solve", "200"))
	ObserveRequest("/v1/solve", "200")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/v1/solve", "200")))
}

func TestInitTracing_None(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_Unknown(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Exporter: "zipkin"})
	assert.True(t, errors.Is(err, ErrUnknownExporter), "got %v", err)
}

func TestInitTracing_Stdout(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	buf := &bytes.Buffer{}
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		ServiceName: "geosymbol-test",
		Exporter:    "stdout",
		Output:      buf,
	})
	require.NoError(t, err)

	_, span := Tracer(nil).Start(context.Background(), "geosymbol.Solve")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "geosymbol.Solve")
	assert.Contains(t, buf.String(), "geosymbol-test")
}
