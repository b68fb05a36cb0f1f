package statemachine

// Builder provides a fluent API for building transition tables.
// The first error encountered is reported by Build.
type Builder[S, E comparable] struct {
	table  *Table[S, E]
	from   []S
	event  E
	to     S
	hasEv  bool
	hasTo  bool
	guards []Guard[S, E]
	err    error
}

// NewBuilder creates an empty table builder.
func NewBuilder[S, E comparable]() *Builder[S, E] {
	return &Builder[S, E]{
		table: &Table[S, E]{
			transitions: make(map[S]map[E][]transition[S, E]),
			terminal:    make(map[S]struct{}),
		},
	}
}

// From sets the source states of the next transition.
func (b *Builder[S, E]) From(states ...S) *Builder[S, E] {
	b.reset()
	b.from = states
	return b
}

// When sets the event that triggers the transition.
func (b *Builder[S, E]) When(event E) *Builder[S, E] {
	b.event = event
	b.hasEv = true
	return b
}

// To sets the target state.
func (b *Builder[S, E]) To(state S) *Builder[S, E] {
	b.to = state
	b.hasTo = true
	return b
}

// WithGuard adds a guard to the current transition.
func (b *Builder[S, E]) WithGuard(guard Guard[S, E]) *Builder[S, E] {
	b.guards = append(b.guards, guard)
	return b
}

// Add records the current transition for every source state.
func (b *Builder[S, E]) Add() *Builder[S, E] {
	if b.err != nil {
		return b
	}
	if len(b.from) == 0 || !b.hasEv || !b.hasTo {
		b.err = ErrInvalidTransition
		return b
	}
	for _, from := range b.from {
		byEvent, ok := b.table.transitions[from]
		if !ok {
			byEvent = make(map[E][]transition[S, E])
			b.table.transitions[from] = byEvent
		}
		byEvent[b.event] = append(byEvent[b.event], transition[S, E]{to: b.to, guards: b.guards})
	}
	b.reset()
	return b
}

// Terminal marks states that no event can leave.
func (b *Builder[S, E]) Terminal(states ...S) *Builder[S, E] {
	for _, s := range states {
		b.table.terminal[s] = struct{}{}
	}
	return b
}

// Build returns the table or the first configuration error.
func (b *Builder[S, E]) Build() (*Table[S, E], error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.table, nil
}

// MustBuild is like Build but panics on error. Use for package level tables.
func (b *Builder[S, E]) MustBuild() *Table[S, E] {
	t, err := b.Build()
	if err != nil {
		panic("statemachine: " + err.Error())
	}
	return t
}

func (b *Builder[S, E]) reset() {
	var zeroE E
	var zeroS S
	b.from = nil
	b.event = zeroE
	b.to = zeroS
	b.hasEv = false
	b.hasTo = false
	b.guards = nil
}
