package tools

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// GenerateLinkedInContent produces one ready-to-publish post on a subject,
// steered by the optional description. This tool never touches the browser.
func (t *Toolset) GenerateLinkedInContent(ctx context.Context, p GenerateContentParams) string {
	if strings.TrimSpace(p.Subject) == "" {
		return "Error: Subject is required. Please provide a topic to search for."
	}
	if p.NumPosts != 0 && (p.NumPosts < 1 || p.NumPosts > 20) {
		return "Error: num_posts must be between 1 and 20."
	}
	if t.ai == nil {
		return msgMissingAPIKey
	}

	t.logger.Info("Generating post content.", zap.String("subject", p.Subject))

	post, err := t.ai.GeneratePost(ctx, p.Subject, p.Description)
	if err != nil {
		t.logger.Error("Content generation failed.", zap.Error(err))
		return "Error generating AI content: " + err.Error()
	}
	return post
}
