package token

// Config holds the signing keys. Keys are injected once at startup and never
// change for the lifetime of the process.
type Config struct {
	SigningKeys KeyRing `env:"TOKEN_SIGNING_KEYS,required"`
}
