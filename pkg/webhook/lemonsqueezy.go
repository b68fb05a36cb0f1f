package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subgate/pkg/subscription"
)

const (
	LemonSqueezyName            = "lemonsqueezy"
	LemonSqueezySignatureHeader = "X-Signature"
)

type lemonSqueezyPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		WebhookID  string `json:"webhook_id"`
		TestMode   bool   `json:"test_mode"`
		CustomData struct {
			CustomerID string `json:"customer_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         flexString `json:"id"`
		Attributes struct {
			SubscriptionID flexString `json:"subscription_id"`
			ProductID      flexString `json:"product_id"`
			VariantID      flexString `json:"variant_id"`
			Status         string     `json:"status"`
			RenewsAt       string     `json:"renews_at"`
			EndsAt         string     `json:"ends_at"`
			UpdatedAt      string     `json:"updated_at"`
		} `json:"attributes"`
	} `json:"data"`
}

// LemonSqueezy verifies X-Signature webhooks: a hex HMAC-SHA256 of the raw
// body keyed with the webhook signing secret.
type LemonSqueezy struct {
	secret string
}

// NewLemonSqueezy creates the provider. The secret is required.
func NewLemonSqueezy(secret string) (*LemonSqueezy, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: lemonsqueezy", ErrMissingSecret)
	}
	return &LemonSqueezy{secret: secret}, nil
}

func (p *LemonSqueezy) Name() string            { return LemonSqueezyName }
func (p *LemonSqueezy) SignatureHeader() string { return LemonSqueezySignatureHeader }

func (p *LemonSqueezy) Verify(_ context.Context, payload []byte, signature string) (subscription.Event, error) {
	if err := VerifySignature(p.secret, payload, signature); err != nil {
		return subscription.Event{}, err
	}

	var body lemonSqueezyPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return subscription.Event{}, errors.Join(ErrMalformedPayload, err)
	}
	if body.Meta.EventName == "" {
		return subscription.Event{}, fmt.Errorf("%w: missing event name", ErrMalformedPayload)
	}

	attrs := body.Data.Attributes
	ev := subscription.Event{
		ID:            body.Meta.WebhookID,
		Provider:      LemonSqueezyName,
		ProviderEvent: body.Meta.EventName,
		ProviderSubID: string(body.Data.ID),
		ProductID:     string(attrs.ProductID),
		VariantID:     string(attrs.VariantID),
	}
	ev.Kind = lemonSqueezyKind(body.Meta.EventName, attrs.Status, attrs.EndsAt, attrs.UpdatedAt)
	if ev.Kind == subscription.EventUnrecognized {
		if ev.ID == "" {
			ev.ID = body.Meta.EventName + ":" + string(body.Data.ID)
		}
		return ev, nil
	}

	// Invoice events reference the subscription through their attributes.
	if attrs.SubscriptionID != "" {
		ev.ProviderSubID = string(attrs.SubscriptionID)
	}

	occurredAt, ok := parseTime(attrs.UpdatedAt)
	if !ok {
		return subscription.Event{}, fmt.Errorf("%w: invalid updated_at %q", ErrMalformedPayload, attrs.UpdatedAt)
	}
	ev.OccurredAt = occurredAt

	switch ev.Kind {
	case subscription.EventCancelScheduled, subscription.EventCancelled:
		if end, ok := parseTime(attrs.EndsAt); ok {
			ev.PeriodEnd = end
		}
	default:
		if end, ok := parseTime(attrs.RenewsAt); ok {
			ev.PeriodEnd = end
		}
	}

	if ev.ID == "" {
		// Older payloads lack webhook_id; the event name, object and timestamp
		// identify a delivery just as well.
		ev.ID = fmt.Sprintf("%s:%s:%d", body.Meta.EventName, ev.ProviderSubID, occurredAt.UnixNano())
	}

	if id := body.Meta.CustomData.CustomerID; id != "" {
		accountID, err := uuid.Parse(id)
		if err != nil {
			return subscription.Event{}, fmt.Errorf("%w: invalid customer_id", ErrMalformedPayload)
		}
		ev.AccountID = accountID
	}

	if err := ev.Validate(); err != nil {
		return subscription.Event{}, errors.Join(ErrMalformedPayload, err)
	}
	return ev, nil
}

func lemonSqueezyKind(eventName, status, endsAt, updatedAt string) subscription.EventKind {
	switch eventName {
	case "subscription_created":
		return subscription.EventCreated
	case "subscription_payment_failed":
		return subscription.EventPaymentFailed
	case "subscription_payment_recovered", "subscription_payment_success":
		return subscription.EventPaymentRecovered
	case "subscription_cancelled":
		return lemonSqueezyCancelKind(endsAt, updatedAt)
	case "subscription_expired":
		return subscription.EventCancelled
	case "subscription_paused":
		return subscription.EventPaused
	case "subscription_resumed", "subscription_unpaused":
		return subscription.EventResumed
	case "subscription_updated":
		// Sent alongside every specific event with the same updated_at, so
		// it must carry the status change itself.
		return lemonSqueezyStatusKind(status, endsAt, updatedAt)
	default:
		return subscription.EventUnrecognized
	}
}

func lemonSqueezyStatusKind(status, endsAt, updatedAt string) subscription.EventKind {
	switch status {
	case "active", "on_trial":
		return subscription.EventActivated
	case "past_due":
		return subscription.EventPaymentFailed
	case "paused", "unpaid":
		return subscription.EventPaused
	case "cancelled":
		return lemonSqueezyCancelKind(endsAt, updatedAt)
	case "expired":
		return subscription.EventCancelled
	default:
		return subscription.EventUpdated
	}
}

// Cancelled subscriptions keep running until ends_at.
func lemonSqueezyCancelKind(endsAt, updatedAt string) subscription.EventKind {
	end, okEnd := parseTime(endsAt)
	at, okAt := parseTime(updatedAt)
	if okEnd && okAt && end.After(at) {
		return subscription.EventCancelScheduled
	}
	return subscription.EventCancelled
}
