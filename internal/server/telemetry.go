package server

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

// Telemetry 聚合指标基础设施：Prometheus Registry 与全局 MeterProvider。
// 请求级指标经 OTel Meter 写入，最终由 /metrics 端点以 Prometheus 格式暴露。
type Telemetry struct {
	Registry      *prometheus.Registry
	MeterProvider *sdkmetric.MeterProvider
}

// NewTelemetry 初始化指标管线，返回 Wire cleanup。
func NewTelemetry(meta loader.ServiceMetadata, logger log.Logger) (*Telemetry, func(), error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", meta.Name),
		attribute.String("service.version", meta.Version),
		attribute.String("deployment.environment", meta.Environment),
		attribute.String("service.instance.id", meta.InstanceID),
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	helper := log.NewHelper(logger)
	cleanup := func() {
		helper.Info("shutting down meter provider")
		if err := provider.Shutdown(context.Background()); err != nil {
			helper.Warnf("meter provider shutdown: %v", err)
		}
	}
	return &Telemetry{Registry: registry, MeterProvider: provider}, cleanup, nil
}
