package config

import "errors"

var (
	// ErrParseEnv wraps env parsing failures, missing required variables included.
	ErrParseEnv = errors.New("config: failed to parse environment")
	// ErrLoadingEnvFile wraps godotenv failures for explicitly requested files.
	ErrLoadingEnvFile = errors.New("config: failed to load env file")
	// ErrNilPointer is returned by Load for a nil target.
	ErrNilPointer = errors.New("config: nil target")
)
