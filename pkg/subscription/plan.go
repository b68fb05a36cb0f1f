package subscription

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Plans maps provider product or variant ids to plan slugs.
// The text form is "productID=plan,variantID=plan".
type Plans map[string]string

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Plans) UnmarshalText(text []byte) error {
	out := make(Plans)
	for pair := range strings.SplitSeq(string(text), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, plan, ok := strings.Cut(pair, "=")
		id, plan = strings.TrimSpace(id), strings.TrimSpace(plan)
		if !ok || id == "" || plan == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPlans, pair)
		}
		if _, dup := out[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidPlans, id)
		}
		out[id] = plan
	}
	*p = out
	return nil
}

// String returns the text form with ids sorted.
func (p Plans) String() string {
	ids := slices.Sorted(maps.Keys(p))
	pairs := make([]string, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, id+"="+p[id])
	}
	return strings.Join(pairs, ",")
}

// Resolve returns the plan of a subscription. Variant mappings win over
// product mappings.
func (p Plans) Resolve(productID, variantID string) (string, bool) {
	if variantID != "" {
		if plan, ok := p[variantID]; ok {
			return plan, true
		}
	}
	if productID != "" {
		if plan, ok := p[productID]; ok {
			return plan, true
		}
	}
	return "", false
}
