// Package logger 构建全应用共享的结构化 Kratos Logger。
package logger

import (
	"context"
	"os"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds a Kratos-compatible logger with service metadata and
// trace/span enrichment so log lines correlate with OTel traces.
func NewLogger(meta loader.ServiceMetadata) log.Logger {
	base := log.NewStdLogger(os.Stdout)
	return log.With(
		base,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", meta.Name,
		"service.version", meta.Version,
		"service.env", meta.Environment,
		"service.id", meta.InstanceID,
		"trace_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasTraceID() {
				return sc.TraceID().String()
			}
			return ""
		}),
		"span_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasSpanID() {
				return sc.SpanID().String()
			}
			return ""
		}),
	)
}
