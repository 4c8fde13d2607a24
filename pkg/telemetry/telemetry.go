// Package telemetry настраивает OpenTelemetry: трейсы уходят по OTLP/gRPC,
// метрики отдаются через Prometheus-экспортер на /metrics.
package telemetry

import (
	"context"
	"errors"

	"github.com/DRSN-tech/product-catalog/internal/cfg"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceVersion = "1.0.0"

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	logger         logger.Logger
}

// New создаёт провайдеры и делает их глобальными. Без OTLPEndpoint трейсы не экспортируются,
// но спаны создаются, и trace_id попадает в логи.
func New(ctx context.Context, cfg *cfg.TelemetryCfg, reg prometheus.Registerer, log logger.Logger) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.OTLPEndpoint == "" {
		log.Infof("telemetry: trace export disabled")
	} else {
		log.Infof("telemetry: exporting traces to %s", cfg.OTLPEndpoint)
	}

	return &Telemetry{
		TracerProvider: tp,
		MeterProvider:  mp,
		logger:         log,
	}, nil
}

func newTracerProvider(ctx context.Context, cfg *cfg.TelemetryCfg, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if cfg.OTLPEndpoint == "" {
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// Shutdown сбрасывает накопленные спаны и останавливает провайдеры.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.logger.Infof("Shutting down OpenTelemetry")

	return errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
}
