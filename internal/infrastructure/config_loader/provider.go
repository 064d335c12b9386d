package loader

import "github.com/google/wire"

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideBootstrap,
	ProvideServiceMetadata,
	ProvideServer,
	ProvidePostgres,
	ProvideStorage,
	ProvidePubSub,
	ProvideUpload,
	ProvideOutbox,
)

// ProvideBootstrap exposes the strongly typed bootstrap configuration.
func ProvideBootstrap(b *Bundle) *Bootstrap {
	if b == nil {
		return nil
	}
	return b.Bootstrap
}

// ProvideServiceMetadata returns the resolved ServiceMetadata from the bundle.
func ProvideServiceMetadata(b *Bundle) ServiceMetadata {
	if b == nil {
		return ServiceMetadata{}
	}
	return b.Service
}

// ProvideServer returns the server section of the bootstrap configuration.
func ProvideServer(bc *Bootstrap) Server {
	if bc == nil {
		return Server{}
	}
	return bc.Server
}

// ProvidePostgres returns the postgres section of the bootstrap configuration.
func ProvidePostgres(bc *Bootstrap) Postgres {
	if bc == nil {
		return Postgres{}
	}
	return bc.Data.Postgres
}

// ProvideStorage returns the object storage section.
func ProvideStorage(bc *Bootstrap) Storage {
	if bc == nil {
		return Storage{}
	}
	return bc.Storage
}

// ProvidePubSub returns the pubsub section.
func ProvidePubSub(bc *Bootstrap) PubSub {
	if bc == nil {
		return PubSub{}
	}
	return bc.PubSub
}

// ProvideUpload returns the upload pipeline section.
func ProvideUpload(bc *Bootstrap) Upload {
	if bc == nil {
		return Upload{}
	}
	return bc.Upload
}

// ProvideOutbox returns the outbox publisher section.
func ProvideOutbox(bc *Bootstrap) Outbox {
	if bc == nil {
		return Outbox{}
	}
	return bc.Outbox
}
