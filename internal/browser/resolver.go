// File: internal/browser/resolver.go
package browser

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Resolve after every strategy in a cascade has
// been exhausted. Callers decide whether absence is expected (a missing
// "load more" button ends a pagination loop) or fatal (a missing composer
// aborts the tool call).
var ErrNotFound = errors.New("element not found after exhausting all strategies")

// StrategyKind tags how a strategy locates its target. The tag exists so
// cascades can be inspected and asserted on instead of living inside
// duplicated try/catch blocks.
type StrategyKind string

const (
	// KindCSS locates via document.querySelector.
	KindCSS StrategyKind = "css"
	// KindXPath locates via document.evaluate.
	KindXPath StrategyKind = "xpath"
	// KindText scans elements matching Scope for visible text containing
	// Selector. The loosest strategy; belongs at the end of a cascade.
	KindText StrategyKind = "text"
)

// Strategy is one entry of a locator cascade: a way to find an element, a
// bound on how long to wait for it, and a description for logs.
type Strategy struct {
	Kind        StrategyKind
	Selector    string
	Scope       string // element filter for KindText, e.g. "button"
	Timeout     time.Duration
	Description string
}

// ProbeResult is a single-shot observation of a strategy's target.
type ProbeResult struct {
	Present bool
	Visible bool
}

// Prober performs one non-blocking presence/visibility check. Session
// implements it against the live page; tests implement it with scripts.
type Prober interface {
	Probe(ctx context.Context, s Strategy) (ProbeResult, error)
}

// Match identifies which strategy of a cascade located the element. The match
// carries no page handle: re-locating by strategy keeps element references
// from outliving the browser context.
type Match struct {
	Strategy Strategy
}

// Resolver evaluates locator cascades in priority order. Precise strategies
// (stable attribute hooks, accessible labels) come first; free-text and
// structural fallbacks only run when the page deviates from the expected
// shape.
type Resolver struct {
	prober       Prober
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewResolver creates a resolver polling the given prober.
func NewResolver(prober Prober, logger *zap.Logger) *Resolver {
	return &Resolver{
		prober:       prober,
		logger:       logger.Named("resolver"),
		pollInterval: 250 * time.Millisecond,
	}
}

// Resolve tries each strategy in order. Per strategy it waits up to the
// strategy's timeout for presence, then checks visibility once; a timeout or
// a present-but-hidden element falls through to the next strategy. Only after
// all strategies are exhausted is ErrNotFound returned.
func (r *Resolver) Resolve(ctx context.Context, cascade []Strategy) (*Match, error) {
	for i, strategy := range cascade {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := r.awaitPresence(ctx, strategy)
		if err != nil {
			return nil, err
		}
		if result.Present && result.Visible {
			r.logger.Debug("Strategy matched.",
				zap.Int("rank", i),
				zap.String("kind", string(strategy.Kind)),
				zap.String("description", strategy.Description))
			return &Match{Strategy: strategy}, nil
		}

		r.logger.Debug("Strategy fell through.",
			zap.Int("rank", i),
			zap.String("kind", string(strategy.Kind)),
			zap.String("description", strategy.Description),
			zap.Bool("present", result.Present))
	}
	return nil, ErrNotFound
}

// awaitPresence polls the prober until the target is present, the strategy
// timeout expires, or the context ends. Once present, the visibility of that
// observation is final for this strategy.
func (r *Resolver) awaitPresence(ctx context.Context, s Strategy) (ProbeResult, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	deadline := time.Now().Add(timeout)

	for {
		result, err := r.prober.Probe(ctx, s)
		if err != nil {
			return ProbeResult{}, err
		}
		if result.Present {
			return result, nil
		}
		if time.Now().After(deadline) {
			return ProbeResult{}, nil
		}

		select {
		case <-ctx.Done():
			return ProbeResult{}, ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}
