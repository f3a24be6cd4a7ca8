package common

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewTracerProvider builds the process tracer provider. Spans are exported
// to Zipkin when zipkinEndpoint is set, otherwise they are only sampled
// in process so trace ids still reach the logs.
func NewTracerProvider(serviceName, environment string, id int64, zipkinEndpoint string) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", environment),
		attribute.Int64("service.instance.id", id),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	}

	if zipkinEndpoint != "" {
		exporter, err := zipkin.New(zipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logrus.Infof("exporting traces to zipkin at %s", zipkinEndpoint)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}
