// Package main boots the Kratos HTTP entrypoint for the content service.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
	loginfra "github.com/streamspace/streamspace-services-content/internal/infrastructure/logger"
	"github.com/streamspace/streamspace-services-content/internal/tasks/outbox"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "streamspace-content"
	// Version is the version of the compiled software.
	Version string
)

func newApp(logger log.Logger, meta loader.ServiceMetadata, hs *khttp.Server, publisher *outbox.PublisherTask) *kratos.App {
	name := meta.Name
	if name == "" {
		name = Name
	}
	version := meta.Version
	if version == "" {
		version = Version
	}
	return kratos.New(
		kratos.ID(meta.InstanceID),
		kratos.Name(name),
		kratos.Version(version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			publisher,
		),
	)
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	confPath := fs.String("conf", "", "config path, eg: -conf configs")
	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	bundle, err := loader.Build(loader.Params{ConfPath: *confPath})
	if err != nil {
		panic(err)
	}

	logger := loginfra.NewLogger(bundle.Service)

	app, cleanup, err := wireApp(context.Background(), bundle, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
