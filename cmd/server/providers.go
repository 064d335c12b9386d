package main

import (
	"github.com/streamspace/streamspace-services-content/internal/controllers"
	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
	"github.com/streamspace/streamspace-services-content/internal/services"
)

// provideUploadConfig 把配置段换算为上传流水线参数。
func provideUploadConfig(cfg loader.Upload) services.UploadConfig {
	return services.UploadConfig{
		ShortMaxDuration:        loader.MustDuration(cfg.ShortMaxDuration, 0),
		MaxFileSizeBytes:        cfg.MaxFileSizeBytes,
		PlaceholderThumbnailURL: cfg.PlaceholderThumbnailURL,
	}
}

// provideHandlerTimeouts 从 HTTP 超时推导各类 Handler 的超时策略。
// 命令路径（上传大文件）使用完整的服务器超时，查询路径收紧。
func provideHandlerTimeouts(cfg loader.Server) controllers.HandlerTimeouts {
	serverTimeout := loader.MustDuration(cfg.HTTP.Timeout, 0)
	return controllers.HandlerTimeouts{
		Default: serverTimeout,
		Command: serverTimeout,
	}
}
