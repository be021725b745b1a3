package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/browser"
)

const maxPostLength = 3000

var startPostCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "Start a post",
		Scope:       "button",
		Timeout:     10 * time.Second,
		Description: "start-a-post button by text",
	},
	{
		Kind:        browser.KindXPath,
		Selector:    `//*[contains(text(), 'Start a post')]/ancestor-or-self::button`,
		Timeout:     5 * time.Second,
		Description: "start-a-post via ancestor button",
	},
}

var composerCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `[placeholder*="What do you want to talk about"]`,
		Timeout:     10 * time.Second,
		Description: "composer by placeholder",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    `div[contenteditable="true"]`,
		Timeout:     5 * time.Second,
		Description: "composer by contenteditable",
	},
	{
		Kind:        browser.KindXPath,
		Selector:    `//*[contains(text(), 'What do you want to talk about')]/ancestor::div[1]//*[@contenteditable]`,
		Timeout:     5 * time.Second,
		Description: "composer near placeholder text",
	},
}

// PostToLinkedIn writes content into the post composer on the feed. It stops
// short of publishing: the draft stays in the composer for manual review.
func (t *Toolset) PostToLinkedIn(ctx context.Context, p PostParams) string {
	username, password, ok := t.credentials(p.Username, p.Password)
	if !ok {
		return msgMissingCredentials
	}
	if strings.TrimSpace(p.Content) == "" {
		return "Error: Content is required and cannot be empty."
	}
	if len(p.Content) > maxPostLength {
		return fmt.Sprintf("Error: Content is too long (%d characters). LinkedIn posts have a %d character limit.",
			len(p.Content), maxPostLength)
	}

	t.logger.Info("Writing post to composer.", zap.Int("content_length", len(p.Content)))

	return t.withBrowser(ctx, username, password, func(ctx context.Context, session *browser.Session) (string, error) {
		// Login leaves the session on the feed, where the composer lives.
		resolver := browser.NewResolver(session, t.logger)

		start, err := resolver.Resolve(ctx, startPostCascade)
		if err != nil {
			if errors.Is(err, browser.ErrNotFound) {
				return "Error: Could not find the 'Start a post' button on the page. Please make sure you're on the LinkedIn feed page.", nil
			}
			return "", err
		}
		if _, err := session.ClickMatch(ctx, start); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		composer, err := resolver.Resolve(ctx, composerCascade)
		if err != nil {
			if errors.Is(err, browser.ErrNotFound) {
				return "Error: Could not find the post composition text area. The LinkedIn interface may have changed.", nil
			}
			return "", err
		}
		if err := session.FillMatch(ctx, composer, p.Content); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		written, err := session.TextOf(ctx, composer)
		if err != nil {
			return "", err
		}
		if written == "" {
			return "", errors.New("composer is empty after fill")
		}

		preview := p.Content
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return fmt.Sprintf(
			"Successfully wrote content to LinkedIn post composer.\n\nContent preview:\n%s\n\nThe content has been filled in the post composer. You can manually review and publish it.",
			preview), nil
	})
}
