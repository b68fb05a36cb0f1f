// Package config loads typed configuration from environment variables.
//
// Every package of the service declares its own env-tagged Config struct.
// The binary loads each one once at startup:
//
//	var (
//		tokens  token.Config
//		limits  ratelimit.Config
//		webhook webhook.Config
//	)
//	if err := config.Load(&tokens); err != nil {
//		return err
//	}
//
// Parsing is done by github.com/caarlos0/env/v11, so fields may use any type
// implementing encoding.TextUnmarshaler (key rings, rate-limit routes, plan
// maps). A .env file in the working directory is read on first use through
// github.com/joho/godotenv; LoadEnv reads other files.
//
// Parsed values are cached per type. A second Load of the same type returns
// the cached copy even if the environment changed, which keeps configuration
// immutable for the life of the process. ResetCache clears the cache in tests.
package config
