package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/statemachine"
)

type state string
type event string

const (
	draft     state = "draft"
	review    state = "review"
	published state = "published"
	archived  state = "archived"

	submit  event = "submit"
	approve event = "approve"
	reject  event = "reject"
	archive event = "archive"
)

func docTable(t *testing.T) *statemachine.Table[state, event] {
	t.Helper()
	table, err := statemachine.NewBuilder[state, event]().
		From(draft).When(submit).To(review).Add().
		From(review).When(approve).To(published).
		WithGuard(func(_ context.Context, _ state, _ event, data any) bool {
			ok, _ := data.(bool)
			return ok
		}).Add().
		From(review).When(approve).To(draft).Add().
		From(review).When(reject).To(draft).Add().
		From(draft, review, published).When(archive).To(archived).Add().
		Terminal(archived).
		Build()
	require.NoError(t, err)
	return table
}

func TestTable_Next(t *testing.T) {
	t.Parallel()

	table := docTable(t)
	ctx := context.Background()

	tests := []struct {
		name string
		from state
		ev   event
		data any
		want state
	}{
		{"simple", draft, submit, nil, review},
		{"guard passes", review, approve, true, published},
		{"guard fails falls through", review, approve, false, draft},
		{"multi source", published, archive, nil, archived},
		{"multi source draft", draft, archive, nil, archived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Next(ctx, tt.from, tt.ev, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_Errors(t *testing.T) {
	t.Parallel()

	table := docTable(t)
	ctx := context.Background()

	got, err := table.Next(ctx, published, submit, nil)
	assert.ErrorIs(t, err, statemachine.ErrNoTransition)
	assert.Equal(t, published, got)

	_, err = table.Next(ctx, archived, archive, nil)
	assert.ErrorIs(t, err, statemachine.ErrTerminalState)
	assert.True(t, table.IsTerminal(archived))
	assert.False(t, table.CanFire(ctx, archived, submit, nil))
	assert.True(t, table.CanFire(ctx, draft, submit, nil))
	assert.ElementsMatch(t, []event{approve, reject, archive}, table.Events(review))
}

func TestTable_GuardRejection(t *testing.T) {
	t.Parallel()

	table, err := statemachine.NewBuilder[state, event]().
		From(draft).When(submit).To(review).
		WithGuard(func(context.Context, state, event, any) bool { return false }).
		Add().
		Build()
	require.NoError(t, err)

	_, err = table.Next(context.Background(), draft, submit, nil)
	assert.ErrorIs(t, err, statemachine.ErrRejected)
	assert.NotErrorIs(t, err, statemachine.ErrNoTransition)
	var terr *statemachine.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "draft", terr.From)
	assert.Equal(t, "submit", terr.Event)
}

func TestBuilder_Invalid(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewBuilder[state, event]().From(draft).To(review).Add().Build()
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

	assert.Panics(t, func() {
		statemachine.NewBuilder[state, event]().When(submit).Add().MustBuild()
	})
}
