package loader

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// envConfPath is the env var name that overrides configuration directory when flag is absent.
	envConfPath = "CONF_PATH"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "streamspace-content"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
)
