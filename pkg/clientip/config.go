package clientip

// Config lists the proxy headers trusted to carry the client address.
// Leave empty when the service is reachable without a proxy in front.
type Config struct {
	TrustedHeaders []string `env:"CLIENTIP_TRUSTED_HEADERS" envSeparator:","`
}
