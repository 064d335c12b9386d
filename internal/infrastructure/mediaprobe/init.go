package mediaprobe

import (
	"github.com/google/wire"

	"github.com/streamspace/streamspace-services-content/internal/services"
)

// ProviderSet 暴露媒体探测器构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewFFmpegProber,
	wire.Bind(new(services.MediaProber), new(*FFmpegProber)),
)
