package outbox

import (
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

// ProvideConfig 从 Bootstrap 配置段换算发布任务参数。
func ProvideConfig(cfg loader.Outbox) Config {
	return Config{
		BatchSize:      cfg.BatchSize,
		TickInterval:   loader.MustDuration(cfg.TickInterval, 0),
		InitialBackoff: loader.MustDuration(cfg.InitialBackoff, 0),
		MaxBackoff:     loader.MustDuration(cfg.MaxBackoff, 0),
		MaxAttempts:    cfg.MaxAttempts,
		PublishTimeout: loader.MustDuration(cfg.PublishTimeout, 0),
	}
}

// ProvideMeter 返回发布任务使用的 Meter。
// 依赖全局 MeterProvider，由 server.NewTelemetry 在启动期设置。
func ProvideMeter() metric.Meter {
	return otel.GetMeterProvider().Meter("streamspace-content/outbox")
}

// ProviderSet 暴露发布任务构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideMeter,
	NewPublisherTask,
)
