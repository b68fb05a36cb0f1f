package webhook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/subscription"
	"github.com/dmitrymomot/subgate/pkg/webhook"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) ApplyEvent(ctx context.Context, ev subscription.Event) (subscription.Outcome, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(subscription.Outcome), args.Error(1)
}

func TestProcessor_UnrecognizedIsAcknowledged(t *testing.T) {
	t.Parallel()

	ledger := &mockApplier{}
	p := webhook.NewProcessor(ledger)

	ack, err := p.Process(context.Background(), subscription.Event{ID: "evt_1", Kind: subscription.EventUnrecognized})
	require.NoError(t, err)
	assert.False(t, ack.Applied)
	assert.Equal(t, subscription.ReasonUnrecognized, ack.Reason)
	ledger.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything)
}

func TestProcessor_Outcomes(t *testing.T) {
	t.Parallel()

	ev := subscription.Event{ID: "evt_2", Kind: subscription.EventPaymentFailed, ProviderSubID: "sub_1", OccurredAt: time.Now()}

	tests := []struct {
		name    string
		outcome subscription.Outcome
		err     error
		applied bool
		reason  subscription.IgnoreReason
		wantErr error
	}{
		{name: "applied", outcome: subscription.Applied(&subscription.Subscription{}), applied: true},
		{name: "stale", outcome: subscription.Ignored(subscription.ReasonStale, nil), reason: subscription.ReasonStale},
		{name: "store fault", err: errors.Join(subscription.ErrStoreUnavailable, errors.New("timeout")), wantErr: webhook.ErrProcessing},
		{name: "retries exhausted", err: subscription.ErrConcurrentUpdate, wantErr: webhook.ErrProcessing},
		{name: "invalid event", err: subscription.ErrInvalidEvent, wantErr: webhook.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ledger := &mockApplier{}
			ledger.On("ApplyEvent", mock.Anything, ev).Return(tt.outcome, tt.err).Once()
			p := webhook.NewProcessor(ledger)

			ack, err := p.Process(context.Background(), ev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt_2", ack.EventID)
			assert.Equal(t, tt.applied, ack.Applied)
			assert.Equal(t, tt.reason, ack.Reason)
			ledger.AssertExpectations(t)
		})
	}
}

func TestProcessor_WithLedger(t *testing.T) {
	t.Parallel()

	ledger := subscription.NewLedger(subscription.NewMemoryStore())
	p := webhook.NewProcessor(ledger)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	created := subscription.Event{
		ID: "evt_1", Kind: subscription.EventCreated, ProviderSubID: "sub_1",
		AccountID: uuid.New(), OccurredAt: at,
	}
	ack, err := p.Process(ctx, created)
	require.NoError(t, err)
	assert.True(t, ack.Applied)

	ack, err = p.Process(ctx, created)
	require.NoError(t, err)
	assert.False(t, ack.Applied)
	assert.Equal(t, subscription.ReasonDuplicate, ack.Reason)
}
