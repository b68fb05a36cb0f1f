package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/subgate/pkg/webhook"
)

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"meta":{"event_name":"subscription_created"}}`)
	sig := webhook.Sign(lsSecret, payload)

	assert.Len(t, sig, 64)
	assert.NoError(t, webhook.VerifySignature(lsSecret, payload, sig))

	tests := []struct {
		name    string
		secret  string
		payload []byte
		sig     string
		want    error
	}{
		{"wrong secret", "other", payload, sig, webhook.ErrSignatureMismatch},
		{"empty signature", lsSecret, payload, "", webhook.ErrSignatureMismatch},
		{"not hex", lsSecret, payload, "zz" + sig[2:], webhook.ErrSignatureMismatch},
		{"short", lsSecret, payload, sig[:62], webhook.ErrSignatureMismatch},
		{"missing secret", "", payload, sig, webhook.ErrMissingSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, webhook.VerifySignature(tt.secret, tt.payload, tt.sig), tt.want)
		})
	}
}

func TestVerifySignature_AnyByteMutationFails(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"meta":{"event_name":"subscription_payment_failed","webhook_id":"evt_9"}}`)
	sig := webhook.Sign(lsSecret, payload)

	for i := range payload {
		mutated := append([]byte(nil), payload...)
		mutated[i] ^= 0x01
		assert.ErrorIs(t, webhook.VerifySignature(lsSecret, mutated, sig), webhook.ErrSignatureMismatch, "byte %d", i)
	}
}
