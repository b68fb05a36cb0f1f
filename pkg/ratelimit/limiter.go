package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/subgate/pkg/logger"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time

	// RetryAfter is the time until the window rolls over. Always positive
	// for rejected requests.
	RetryAfter time.Duration
}

// Limiter decides whether a client may call a route.
type Limiter interface {
	Allow(ctx context.Context, routeID, clientID string) (Decision, error)
}

// FixedWindow implements Limiter with fixed, aligned windows.
type FixedWindow struct {
	store  Store
	rules  RuleSet
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindow) {
		if now != nil {
			l.now = now
		}
	}
}

// WithKeyPrefix namespaces counter keys. Defaults to "rl".
func WithKeyPrefix(prefix string) Option {
	return func(l *FixedWindow) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *FixedWindow) {
		if log != nil {
			l.logger = log
		}
	}
}

// NewFixedWindow creates a limiter over the validated rule set.
func NewFixedWindow(store Store, rules RuleSet, opts ...Option) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	l := &FixedWindow{
		store:  store,
		rules:  rules,
		prefix: "rl",
		now:    time.Now,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("ratelimit"))
	return l, nil
}

// Rules returns the route table the limiter enforces.
func (l *FixedWindow) Rules() RuleSet {
	return l.rules
}

// Allow counts the request against the route's current window.
// Store failures return ErrStoreUnavailable; callers must reject the request.
func (l *FixedWindow) Allow(ctx context.Context, routeID, clientID string) (Decision, error) {
	if clientID == "" {
		return Decision{}, ErrKeyRequired
	}
	rule := l.rules.Rule(routeID)
	now := l.now()

	window := int64(rule.Window)
	index := now.UnixNano() / window
	resetAt := time.Unix(0, (index+1)*window)

	count, err := l.store.Increment(ctx, l.key(routeID, clientID, index), rule.Window)
	if err != nil {
		l.logger.ErrorContext(ctx, "rate limit check failed",
			logger.Route(routeID),
			logger.Error(err),
		)
		if !errors.Is(err, ErrStoreUnavailable) {
			err = errors.Join(ErrStoreUnavailable, err)
		}
		return Decision{}, err
	}

	d := Decision{
		Allowed:   count <= int64(rule.Limit),
		Limit:     rule.Limit,
		Remaining: max(0, rule.Limit-int(count)),
		ResetAt:   resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = resetAt.Sub(now)
		l.logger.DebugContext(ctx, "rate limit exceeded",
			logger.Route(routeID),
			slog.Int64("count", count),
		)
	}
	return d, nil
}

func (l *FixedWindow) key(routeID, clientID string, index int64) string {
	var b strings.Builder
	b.Grow(len(l.prefix) + len(routeID) + len(clientID) + 24)
	b.WriteString(l.prefix)
	b.WriteByte(':')
	b.WriteString(routeID)
	b.WriteByte(':')
	b.WriteString(clientID)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(index, 10))
	return b.String()
}
