package objectstore

import (
	"github.com/google/wire"

	"github.com/streamspace/streamspace-services-content/internal/services"
)

// ProviderSet 暴露对象存储构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewClient,
	NewGCSStore,
	wire.Bind(new(services.ObjectStore), new(*GCSStore)),
)
