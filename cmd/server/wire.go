//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/streamspace/streamspace-services-content/internal/controllers"
	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
	"github.com/streamspace/streamspace-services-content/internal/infrastructure/database"
	"github.com/streamspace/streamspace-services-content/internal/infrastructure/gcpubsub"
	"github.com/streamspace/streamspace-services-content/internal/infrastructure/mediaprobe"
	"github.com/streamspace/streamspace-services-content/internal/infrastructure/objectstore"
	"github.com/streamspace/streamspace-services-content/internal/repositories"
	"github.com/streamspace/streamspace-services-content/internal/server"
	"github.com/streamspace/streamspace-services-content/internal/services"
	"github.com/streamspace/streamspace-services-content/internal/tasks/outbox"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(context.Context, *loader.Bundle, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		loader.ProviderSet,
		database.ProviderSet,
		objectstore.ProviderSet,
		gcpubsub.ProviderSet,
		mediaprobe.ProviderSet,
		repositories.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		server.ProviderSet,
		outbox.ProviderSet,
		provideUploadConfig,
		provideHandlerTimeouts,
		newApp,
	))
}
