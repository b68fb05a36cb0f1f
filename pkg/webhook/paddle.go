package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"

	"github.com/dmitrymomot/subgate/pkg/subscription"
)

const (
	PaddleName            = "paddle"
	PaddleSignatureHeader = "Paddle-Signature"
)

type paddlePayload struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
	Data       struct {
		ID             string `json:"id"`
		SubscriptionID string `json:"subscription_id"`
		Status         string `json:"status"`
		CustomData     struct {
			CustomerID string `json:"customer_id"`
		} `json:"custom_data"`
		Items []struct {
			Price struct {
				ID        string `json:"id"`
				ProductID string `json:"product_id"`
			} `json:"price"`
		} `json:"items"`
		CurrentBillingPeriod *struct {
			EndsAt string `json:"ends_at"`
		} `json:"current_billing_period"`
		ScheduledChange *paddleScheduledChange `json:"scheduled_change"`
	} `json:"data"`
}

type paddleScheduledChange struct {
	Action      string `json:"action"`
	EffectiveAt string `json:"effective_at"`
}

// Paddle verifies Paddle Billing notifications with the SDK's webhook
// verifier and translates subscription and transaction events.
type Paddle struct {
	verifier *paddle.WebhookVerifier
}

// NewPaddle creates the provider. The secret is the notification
// destination's secret key.
func NewPaddle(secret string) (*Paddle, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: paddle", ErrMissingSecret)
	}
	return &Paddle{verifier: paddle.NewWebhookVerifier(secret)}, nil
}

func (p *Paddle) Name() string            { return PaddleName }
func (p *Paddle) SignatureHeader() string { return PaddleSignatureHeader }

func (p *Paddle) Verify(ctx context.Context, payload []byte, signature string) (subscription.Event, error) {
	if signature == "" {
		return subscription.Event{}, ErrSignatureMismatch
	}

	// The SDK verifies requests, so the raw body is wrapped in one.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return subscription.Event{}, errors.Join(ErrMalformedPayload, err)
	}
	req.Header.Set(PaddleSignatureHeader, signature)

	valid, err := p.verifier.Verify(req)
	if err != nil || !valid {
		return subscription.Event{}, ErrSignatureMismatch
	}

	var body paddlePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return subscription.Event{}, errors.Join(ErrMalformedPayload, err)
	}
	if body.EventID == "" || body.EventType == "" {
		return subscription.Event{}, fmt.Errorf("%w: missing event id or type", ErrMalformedPayload)
	}

	data := body.Data
	ev := subscription.Event{
		ID:            body.EventID,
		Provider:      PaddleName,
		ProviderEvent: body.EventType,
		ProviderSubID: data.ID,
		Kind:          paddleKind(body),
	}
	if ev.Kind == subscription.EventUnrecognized {
		return ev, nil
	}

	// Transactions reference their subscription.
	if data.SubscriptionID != "" {
		ev.ProviderSubID = data.SubscriptionID
	}
	if len(data.Items) > 0 {
		ev.ProductID = data.Items[0].Price.ProductID
		ev.VariantID = data.Items[0].Price.ID
	}

	occurredAt, ok := parseTime(body.OccurredAt)
	if !ok {
		return subscription.Event{}, fmt.Errorf("%w: invalid occurred_at %q", ErrMalformedPayload, body.OccurredAt)
	}
	ev.OccurredAt = occurredAt

	if ev.Kind == subscription.EventCancelScheduled && data.ScheduledChange != nil {
		if end, ok := parseTime(data.ScheduledChange.EffectiveAt); ok {
			ev.PeriodEnd = end
		}
	} else if data.CurrentBillingPeriod != nil {
		if end, ok := parseTime(data.CurrentBillingPeriod.EndsAt); ok {
			ev.PeriodEnd = end
		}
	}

	if id := data.CustomData.CustomerID; id != "" {
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

func paddleKind(body paddlePayload) subscription.EventKind {
	switch body.EventType {
	case "subscription.created":
		return subscription.EventCreated
	case "transaction.payment_failed", "subscription.past_due":
		return subscription.EventPaymentFailed
	case "transaction.completed":
		if body.Data.SubscriptionID == "" {
			return subscription.EventUnrecognized
		}
		return subscription.EventPaymentRecovered
	case "subscription.canceled":
		return subscription.EventCancelled
	case "subscription.paused":
		return subscription.EventPaused
	case "subscription.resumed":
		return subscription.EventResumed
	case "subscription.activated":
		return subscription.EventActivated
	case "subscription.updated":
		return paddleStatusKind(body.Data.Status, body.Data.ScheduledChange)
	default:
		return subscription.EventUnrecognized
	}
}

func paddleStatusKind(status string, scheduled *paddleScheduledChange) subscription.EventKind {
	switch status {
	case "active", "trialing":
		if scheduled != nil && scheduled.Action == "cancel" {
			return subscription.EventCancelScheduled
		}
		return subscription.EventActivated
	case "past_due":
		return subscription.EventPaymentFailed
	case "paused":
		return subscription.EventPaused
	case "canceled":
		return subscription.EventCancelled
	default:
		return subscription.EventUpdated
	}
}
