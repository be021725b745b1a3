package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedProber returns a fixed result per strategy selector and counts
// how often each selector was probed.
type scriptedProber struct {
	results map[string]ProbeResult
	probes  map[string]int
}

func newScriptedProber(results map[string]ProbeResult) *scriptedProber {
	return &scriptedProber{results: results, probes: make(map[string]int)}
}

func (p *scriptedProber) Probe(_ context.Context, s Strategy) (ProbeResult, error) {
	p.probes[s.Selector]++
	return p.results[s.Selector], nil
}

func fastResolver(p Prober) *Resolver {
	r := NewResolver(p, zap.NewNop())
	r.pollInterval = time.Millisecond
	return r
}

func TestResolve_FallsThroughToThirdStrategy(t *testing.T) {
	prober := newScriptedProber(map[string]ProbeResult{
		"a": {},                                // absent: times out
		"b": {Present: true, Visible: false},   // present but hidden
		"c": {Present: true, Visible: true},    // the winner
	})
	r := fastResolver(prober)

	cascade := []Strategy{
		{Kind: KindCSS, Selector: "a", Timeout: 5 * time.Millisecond},
		{Kind: KindCSS, Selector: "b", Timeout: 5 * time.Millisecond},
		{Kind: KindText, Selector: "c", Timeout: 5 * time.Millisecond},
	}

	match, err := r.Resolve(context.Background(), cascade)
	require.NoError(t, err)
	assert.Equal(t, "c", match.Strategy.Selector)
	assert.Equal(t, KindText, match.Strategy.Kind)

	// The hidden strategy resolves its presence on the first probe, so it is
	// attempted exactly once before falling through.
	assert.Equal(t, 1, prober.probes["b"])
	assert.Equal(t, 1, prober.probes["c"])
	assert.GreaterOrEqual(t, prober.probes["a"], 1)
}

func TestResolve_AllExhausted(t *testing.T) {
	prober := newScriptedProber(map[string]ProbeResult{})
	r := fastResolver(prober)

	cascade := []Strategy{
		{Kind: KindCSS, Selector: "x", Timeout: 3 * time.Millisecond},
		{Kind: KindXPath, Selector: "y", Timeout: 3 * time.Millisecond},
	}

	_, err := r.Resolve(context.Background(), cascade)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_FirstStrategyWinsWithoutTouchingRest(t *testing.T) {
	prober := newScriptedProber(map[string]ProbeResult{
		"primary":  {Present: true, Visible: true},
		"fallback": {Present: true, Visible: true},
	})
	r := fastResolver(prober)

	match, err := r.Resolve(context.Background(), []Strategy{
		{Kind: KindCSS, Selector: "primary", Timeout: time.Second},
		{Kind: KindCSS, Selector: "fallback", Timeout: time.Second},
	})
	require.NoError(t, err)
	assert.Equal(t, "primary", match.Strategy.Selector)
	assert.Zero(t, prober.probes["fallback"])
}

func TestResolve_ContextCancellation(t *testing.T) {
	prober := newScriptedProber(map[string]ProbeResult{})
	r := fastResolver(prober)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, []Strategy{{Kind: KindCSS, Selector: "x", Timeout: time.Second}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_WaitsOutPresence(t *testing.T) {
	// Appears on the third probe.
	p := &appearingProber{appearAfter: 3}
	r := fastResolver(p)

	match, err := r.Resolve(context.Background(), []Strategy{
		{Kind: KindCSS, Selector: "late", Timeout: time.Second},
	})
	require.NoError(t, err)
	assert.Equal(t, "late", match.Strategy.Selector)
	assert.Equal(t, 3, p.calls)
}

type appearingProber struct {
	appearAfter int
	calls       int
}

func (p *appearingProber) Probe(context.Context, Strategy) (ProbeResult, error) {
	p.calls++
	if p.calls >= p.appearAfter {
		return ProbeResult{Present: true, Visible: true}, nil
	}
	return ProbeResult{}, nil
}
