package gcpubsub

import "github.com/google/wire"

// ProviderSet 暴露 Pub/Sub 发布器构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewPublisher)
