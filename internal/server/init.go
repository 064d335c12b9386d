package server

import "github.com/google/wire"

// ProviderSet 暴露服务器与指标基础设施构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewTelemetry,
	NewHTTPServer,
)
