package webhook

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/subscription"
)

// Applier applies events to the ledger. *subscription.Ledger satisfies it.
type Applier interface {
	ApplyEvent(ctx context.Context, ev subscription.Event) (subscription.Outcome, error)
}

// Ack tells the caller the event may be acknowledged to the provider.
type Ack struct {
	EventID string
	Applied bool
	Reason  subscription.IgnoreReason
}

// Processor routes verified events to the ledger.
type Processor struct {
	ledger Applier
	logger *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logger. Defaults to a discard logger.
func WithProcessorLogger(log *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewProcessor creates a processor over ledger.
func NewProcessor(ledger Applier, opts ...ProcessorOption) *Processor {
	if ledger == nil {
		panic("webhook: ledger is required")
	}
	p := &Processor{ledger: ledger, logger: logger.Discard()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("webhook"))
	return p
}

// Process applies ev. Unrecognized and ignored events are acknowledged. The
// error is ErrMalformedPayload for events the ledger rejects as invalid and
// ErrProcessing for store faults, which the provider should redeliver.
func (p *Processor) Process(ctx context.Context, ev subscription.Event) (Ack, error) {
	attrs := []any{
		logger.Provider(ev.Provider),
		logger.EventID(ev.ID),
		logger.EventType(ev.ProviderEvent),
	}

	if ev.Kind == subscription.EventUnrecognized {
		p.logger.DebugContext(ctx, "unrecognized webhook event acknowledged", attrs...)
		return Ack{EventID: ev.ID, Reason: subscription.ReasonUnrecognized}, nil
	}

	outcome, err := p.ledger.ApplyEvent(ctx, ev)
	if err != nil {
		attrs = append(attrs, logger.SubscriptionID(ev.ProviderSubID), logger.Error(err))
		if errors.Is(err, subscription.ErrInvalidEvent) {
			p.logger.WarnContext(ctx, "webhook event rejected", attrs...)
			return Ack{}, errors.Join(ErrMalformedPayload, err)
		}
		p.logger.ErrorContext(ctx, "webhook event processing failed", attrs...)
		return Ack{}, errors.Join(ErrProcessing, err)
	}

	if !outcome.Applied {
		attrs = append(attrs, logger.SubscriptionID(ev.ProviderSubID), slog.String("reason", outcome.Reason.String()))
		p.logger.InfoContext(ctx, "webhook event ignored", attrs...)
	}
	return Ack{EventID: ev.ID, Applied: outcome.Applied, Reason: outcome.Reason}, nil
}
