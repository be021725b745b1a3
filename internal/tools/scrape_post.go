package tools

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/browser"
	"github.com/xkilldash9x/linkscout/internal/extract"
)

const (
	commentContainer = "article.comments-comment-entity"

	// The comment feed only yields more items through the load-more button;
	// ten clicks bounds the deepest thread worth scraping.
	commentMaxRounds = 10
	defaultCommentN  = 20
)

var loadMoreCommentsCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "Load more comments",
		Scope:       "button",
		Timeout:     3 * time.Second,
		Description: "load-more-comments button by text",
	},
}

// ScrapeLinkedInPost harvests commenters who left an email address on a post
// and renders them as CSV. Records without an email and reply comments are
// dropped; commenters are deduplicated by profile URL.
func (t *Toolset) ScrapeLinkedInPost(ctx context.Context, p ScrapePostParams) string {
	username, password, ok := t.credentials(p.Username, p.Password)
	if !ok {
		return msgMissingCredentials
	}
	if p.PostURL == "" {
		return "Error: post_url is required."
	}
	n := p.N
	if n <= 0 {
		n = defaultCommentN
	}

	t.logger.Info("Scraping post comments.",
		zap.String("post_url", p.PostURL),
		zap.Int("max_results", n))

	return t.withBrowser(ctx, username, password, func(ctx context.Context, session *browser.Session) (string, error) {
		if err := session.Navigate(ctx, p.PostURL); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		src := browser.NewPageSource(session, commentContainer, loadMoreCommentsCascade)
		records, err := t.extractor.Run(ctx, src, extract.CommentBuilder{}, n, commentMaxRounds)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "No results found.", nil
		}
		return extract.RenderCSV(extract.CommentHeader, records), nil
	})
}
