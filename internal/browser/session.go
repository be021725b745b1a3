// File: internal/browser/session.go
// Session wraps one chromedp browsing context with the page primitives the
// rest of the system is built on: navigation, bounded waits, single-shot
// probes for the resolver cascade, strategy-addressed clicks and fills,
// incremental scrolling and item snapshots. Element references never leave
// this package as live handles; everything is re-located by strategy so
// nothing can outlive the browser context.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/linkscout/internal/config"
)

// Session is one live browsing context, scoped to a single tool invocation.
type Session struct {
	id          string
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         *config.Config
	limiter     *rate.Limiter
	closeOnce   sync.Once
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Close tears down the page, context and Chrome process. Safe to call more
// than once and on every exit path, including panic recovery.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing browser session.")
		s.cancel()
		s.allocCancel()
	})
}

// run executes chromedp actions under the session context combined with the
// operational context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, opCancel := combineContext(s.ctx, ctx)
	defer opCancel()
	return chromedp.Run(s.ctx, runUnder(opCtx, actions...))
}

// runUnder wraps actions so they observe the operational context's deadline.
func runUnder(opCtx context.Context, actions ...chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(taskCtx context.Context) error {
		done := make(chan error, 1)
		go func() {
			done <- chromedp.Tasks(actions).Do(taskCtx)
		}()
		select {
		case err := <-done:
			return err
		case <-opCtx.Done():
			return opCtx.Err()
		}
	})
}

// Navigate loads a URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navTimeout := s.cfg.Network.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	s.logger.Info("Navigating.", zap.String("url", url))
	if err := s.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, navTimeout, navCtx.Err())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the CSS selector is visible or the timeout lapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, waitCancel := context.WithTimeout(ctx, timeout)
	defer waitCancel()

	if err := s.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timed out after %v waiting for %q: %w", timeout, selector, waitCtx.Err())
		}
		return fmt.Errorf("wait for %q failed: %w", selector, err)
	}
	return nil
}

// Fill sets the value of an input identified by a CSS selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := s.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// Click clicks an element identified by a CSS selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// PressEnter sends an Enter keystroke to the focused element, submitting
// search boxes that have no dedicated submit control.
func (s *Session) PressEnter(ctx context.Context) error {
	if err := s.run(ctx, chromedp.KeyEvent(kb.Enter)); err != nil {
		return fmt.Errorf("failed to press enter: %w", err)
	}
	return nil
}

// locateJS builds a JavaScript expression evaluating to the strategy's target
// element or null.
func locateJS(st Strategy) string {
	switch st.Kind {
	case KindXPath:
		return fmt.Sprintf(
			`document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`,
			st.Selector)
	case KindText:
		scope := st.Scope
		if scope == "" {
			scope = "*"
		}
		return fmt.Sprintf(
			`(Array.from(document.querySelectorAll(%q)).find(el => (el.textContent || '').trim().includes(%q)) || null)`,
			scope, st.Selector)
	default:
		return fmt.Sprintf(`document.querySelector(%q)`, st.Selector)
	}
}

// Probe implements the Prober interface with one non-blocking observation of
// the strategy's target: 0 absent, 1 present-but-hidden, 2 visible.
func (s *Session) Probe(ctx context.Context, st Strategy) (ProbeResult, error) {
	js := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return 0;
		const style = window.getComputedStyle(el);
		const visible = el.getClientRects().length > 0 &&
			style.visibility !== 'hidden' && style.display !== 'none';
		return visible ? 2 : 1;
	})()`, locateJS(st))

	var state int
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &state)); err != nil {
		return ProbeResult{}, fmt.Errorf("probe for %q failed: %w", st.Selector, err)
	}
	return ProbeResult{Present: state > 0, Visible: state == 2}, nil
}

// ClickMatch re-locates a resolved match and clicks it in-page. Returns false
// when the element has meanwhile disappeared or is disabled.
func (s *Session) ClickMatch(ctx context.Context, m *Match) (bool, error) {
	js := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el || el.disabled) return false;
		el.scrollIntoView({behavior: 'instant', block: 'center'});
		el.click();
		return true;
	})()`, locateJS(m.Strategy))

	var clicked bool
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &clicked)); err != nil {
		return false, fmt.Errorf("click via %q failed: %w", m.Strategy.Selector, err)
	}
	return clicked, nil
}

// FillMatch re-locates a resolved match and writes text into it, handling
// both form controls and contenteditable surfaces like the post composer.
func (s *Session) FillMatch(ctx context.Context, m *Match, text string) error {
	js := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el) return false;
		el.focus();
		if (el.isContentEditable) {
			el.innerText = %q;
		} else {
			el.value = %q;
		}
		el.dispatchEvent(new Event('input', {bubbles: true}));
		return true;
	})()`, locateJS(m.Strategy), text, text)

	var filled bool
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &filled)); err != nil {
		return fmt.Errorf("fill via %q failed: %w", m.Strategy.Selector, err)
	}
	if !filled {
		return fmt.Errorf("element for %q disappeared before fill", m.Strategy.Selector)
	}
	return nil
}

// TextOf returns the trimmed text content of a resolved match, or "" when it
// is gone.
func (s *Session) TextOf(ctx context.Context, m *Match) (string, error) {
	js := fmt.Sprintf(`(() => {
		const el = %s;
		return el ? (el.innerText || el.textContent || '').trim() : '';
	})()`, locateJS(m.Strategy))

	var text string
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &text)); err != nil {
		return "", fmt.Errorf("text read via %q failed: %w", m.Strategy.Selector, err)
	}
	return text, nil
}

// ScrollExtent reports the current vertical offset and total scroll height.
func (s *Session) ScrollExtent(ctx context.Context) (offset, height int, err error) {
	if err = s.run(ctx,
		chromedp.EvaluateAsDevTools(`Math.round(window.pageYOffset)`, &offset),
		chromedp.EvaluateAsDevTools(`Math.round(document.body.scrollHeight)`, &height),
	); err != nil {
		return 0, 0, fmt.Errorf("failed to read scroll extent: %w", err)
	}
	return offset, height, nil
}

// ScrollTo moves the viewport to an absolute vertical offset.
func (s *Session) ScrollTo(ctx context.Context, y int) error {
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(fmt.Sprintf(`window.scrollTo(0, %d)`, y), nil)); err != nil {
		return fmt.Errorf("scroll to %d failed: %w", y, err)
	}
	return nil
}

// ItemsHTML snapshots the outer HTML of every element matching the container
// selector. The fragments are plain strings; nothing here references live
// DOM nodes afterwards.
func (s *Session) ItemsHTML(ctx context.Context, containerSelector string) ([]string, error) {
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(el => el.outerHTML)`, containerSelector)

	var items []string
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &items)); err != nil {
		return nil, fmt.Errorf("item snapshot for %q failed: %w", containerSelector, err)
	}
	return items, nil
}

// CountSiblingButtons returns how many button elements live under the closest shared
// action container of the match. Used to distinguish "already connected"
// profiles, whose header shows exactly two primary actions.
func (s *Session) CountSiblingButtons(ctx context.Context, m *Match) (int, error) {
	js := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el || !el.parentElement || !el.parentElement.parentElement) return 0;
		return el.parentElement.parentElement.querySelectorAll('button').length;
	})()`, locateJS(m.Strategy))

	var n int
	if err := s.run(ctx, chromedp.EvaluateAsDevTools(js, &n)); err != nil {
		return 0, fmt.Errorf("sibling button count failed: %w", err)
	}
	return n, nil
}

// BodyText returns the rendered text of the whole page.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	if err := s.run(ctx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return text, nil
}

// Settle pauses for the configured render-settle duration. Used only after
// scrolls and load-more clicks, where the page exposes no readiness signal.
func (s *Session) Settle(ctx context.Context) error {
	settle := s.cfg.Network.RenderSettle
	if settle <= 0 {
		settle = 1500 * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settle):
		return nil
	}
}

// Pace blocks on the action rate limiter, keeping scroll/click rounds from
// hammering the site.
func (s *Session) Pace(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// Cookies returns the browser's full cookie set.
func (s *Session) Cookies(ctx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(c)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to collect cookies: %w", err)
	}
	return cookies, nil
}

// SetCookies restores a previously persisted cookie set into the context.
func (s *Session) SetCookies(ctx context.Context, cookies []*network.Cookie) error {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &expires
		}
		params = append(params, p)
	}

	err := s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return network.SetCookies(params).Do(c)
	}))
	if err != nil {
		return fmt.Errorf("failed to restore cookies: %w", err)
	}
	s.logger.Debug("Cookies restored.", zap.Int("count", len(params)))
	return nil
}

// combineContext creates a context canceled when either parent is canceled.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
