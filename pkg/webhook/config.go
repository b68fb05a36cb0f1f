package webhook

// Config holds webhook settings. A provider whose secret is empty is not
// mounted.
type Config struct {
	LemonSqueezySecret string `env:"LEMONSQUEEZY_WEBHOOK_SECRET"`
	PaddleSecret       string `env:"PADDLE_WEBHOOK_SECRET"`
	MaxBodyBytes       int64  `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Providers builds the providers configured with a secret.
func (c Config) Providers() ([]Provider, error) {
	var out []Provider
	if c.LemonSqueezySecret != "" {
		p, err := NewLemonSqueezy(c.LemonSqueezySecret)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if c.PaddleSecret != "" {
		p, err := NewPaddle(c.PaddleSecret)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
