package webhook

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dmitrymomot/subgate/pkg/subscription"
)

// Provider authenticates and translates the webhooks of one billing provider.
type Provider interface {
	// Name identifies the provider in logs and stored records.
	Name() string
	// SignatureHeader is the request header carrying the signature.
	SignatureHeader() string
	// Verify authenticates the raw body before parsing it. It returns
	// ErrSignatureMismatch or ErrMalformedPayload.
	Verify(ctx context.Context, payload []byte, signature string) (subscription.Event, error)
}

// flexString decodes JSON strings and numbers alike. Provider ids come as
// either depending on the object.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
