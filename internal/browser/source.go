// File: internal/browser/source.go
package browser

import (
	"context"
	"errors"
	"time"
)

// scrollStepPause lets lazy-loaded content render between scroll steps.
const scrollStepPause = 400 * time.Millisecond

// PageSource adapts a live session to the paginated extractor: it scrolls the
// page forward, snapshots the item fragments of one container selector, and
// drives the "load more" control through a resolver cascade.
type PageSource struct {
	session   *Session
	resolver  *Resolver
	container string
	loadMore  []Strategy
	offset    int
}

// NewPageSource creates a source over the given item container selector. The
// loadMore cascade may be nil for pages that only use infinite scroll.
func NewPageSource(session *Session, container string, loadMore []Strategy) *PageSource {
	return &PageSource{
		session:   session,
		resolver:  NewResolver(session, session.logger),
		container: container,
		loadMore:  loadMore,
	}
}

// Scroll advances from the last known offset to the page's current scroll
// extent in fixed steps, pausing per step. It never scrolls backward.
func (p *PageSource) Scroll(ctx context.Context) error {
	if err := p.session.Pace(ctx); err != nil {
		return err
	}

	_, height, err := p.session.ScrollExtent(ctx)
	if err != nil {
		return err
	}
	step := p.session.cfg.Network.ScrollStep
	if step <= 0 {
		step = 500
	}

	for y := p.offset; y < height; y += step {
		if err := p.session.ScrollTo(ctx, y); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(scrollStepPause):
		}
	}
	if height > p.offset {
		p.offset = height
	}
	return nil
}

// Items snapshots the outer HTML of all currently present item elements.
func (p *PageSource) Items(ctx context.Context) ([]string, error) {
	return p.session.ItemsHTML(ctx, p.container)
}

// LoadMore clicks the load-more control when it is present and enabled.
// Absence is normal loop termination, not an error.
func (p *PageSource) LoadMore(ctx context.Context) (bool, error) {
	if len(p.loadMore) == 0 {
		return false, nil
	}

	match, err := p.resolver.Resolve(ctx, p.loadMore)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	clicked, err := p.session.ClickMatch(ctx, match)
	if err != nil || !clicked {
		return false, err
	}
	if err := p.session.Settle(ctx); err != nil {
		return false, err
	}
	return true, nil
}
