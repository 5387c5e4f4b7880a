package config

import "time"

const (
	envRoot = "F1_ROOT"

	defaultDataDir     = "data"
	defaultDataFile    = "f1_data.json"
	defaultTempDir     = "tmp"
	defaultDotEnv      = ".env"
	defaultLockTimeout = 5 * time.Second
	// Port the original server listened on.
	defaultPort         = "7000"
	defaultMaxBodyBytes = 1 << 20
	defaultServiceName  = "f1-data-service"
)
