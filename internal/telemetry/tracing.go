package telemetry

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for reasoning runs.
const TracerName = "geosymbol.service"

// ErrUnknownExporter is returned for an exporter name Init does not know.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// TracingConfig selects where spans go.
type TracingConfig struct {
	ServiceName string
	Version     string
	// Exporter is "none" or "stdout".
	Exporter string
	// Output receives stdout spans. Defaults to os.Stderr.
	Output io.Writer
}

// InitTracing installs a global TracerProvider. With the "none" exporter it
// leaves the no-op provider in place. The returned function flushes and stops
// the provider.
func InitTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return nil, errors.Wrapf(ErrUnknownExporter, "%q", cfg.Exporter)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return nil, errors.Wrap(err, "create stdout exporter")
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the run tracer from provider, or from the global provider
// when provider is nil.
func Tracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		return otel.Tracer(TracerName)
	}
	return provider.Tracer(TracerName)
}
