// Package extract implements the per-field extraction fallback chains.
// Each field has an ordered list of independent strategies; the first
// strategy producing a non-empty value that passes the field's sanity
// check wins. Higher-precision site-specific signals come before generic
// full-page fallbacks, which carry more false-positive risk.
package extract

import (
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/surface"
)

// Strategy is one independent way of pulling a field off a page surface.
// Returning "" means the strategy produced nothing.
type Strategy struct {
	Name string
	Fn   func(s *surface.Surface) string
}

// Chain is the ordered strategy list for one field.
type Chain struct {
	Field      model.Field
	Strategies []Strategy
	Sanity     func(string) bool // optional cheap check on a candidate
}

// Run evaluates strategies in order and returns the first sane non-empty
// value. A strategy that panics counts as "no value from this strategy";
// all strategies failing is not an error, the field is simply absent.
func (c Chain) Run(s *surface.Surface) (model.RawFieldValue, bool) {
	for _, strat := range c.Strategies {
		val := runStrategy(c.Field, strat, s)
		if val == "" {
			continue
		}
		if c.Sanity != nil && !c.Sanity(val) {
			zap.L().Debug("extract: candidate rejected by sanity check",
				zap.String("field", string(c.Field)),
				zap.String("strategy", strat.Name),
			)
			continue
		}
		return model.RawFieldValue{Field: c.Field, Value: val, Strategy: strat.Name}, true
	}
	return model.RawFieldValue{}, false
}

func runStrategy(field model.Field, strat Strategy, s *surface.Surface) (val string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Debug("extract: strategy panicked",
				zap.String("field", string(field)),
				zap.String("strategy", strat.Name),
				zap.Any("panic", r),
			)
			val = ""
		}
	}()
	return strat.Fn(s)
}

// Reorder returns a copy of the chain with strategies restricted to the
// given names, in that order. Unknown names are ignored. Used to apply
// per-site chain overrides from config.
func (c Chain) Reorder(names []string) Chain {
	if len(names) == 0 {
		return c
	}
	byName := make(map[string]Strategy, len(c.Strategies))
	for _, s := range c.Strategies {
		byName[s.Name] = s
	}
	out := c
	out.Strategies = nil
	for _, n := range names {
		if s, ok := byName[n]; ok {
			out.Strategies = append(out.Strategies, s)
		}
	}
	if len(out.Strategies) == 0 {
		return c
	}
	return out
}
