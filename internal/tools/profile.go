package tools

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/ai"
	"github.com/xkilldash9x/linkscout/internal/browser"
	"github.com/xkilldash9x/linkscout/internal/extract"
)

// ExtractLinkedInProfileData renders a profile page, hands its cleaned text
// to the model, and returns the structured result as a one-row CSV.
func (t *Toolset) ExtractLinkedInProfileData(ctx context.Context, p ProfileDataParams) string {
	username, password, ok := t.credentials(p.Username, p.Password)
	if !ok {
		return msgMissingCredentials
	}
	if t.ai == nil {
		return msgMissingAPIKey
	}
	if p.ProfileURL == "" {
		return "Error: profile_url is required."
	}

	t.logger.Info("Extracting profile data.", zap.String("profile_url", p.ProfileURL))

	return t.withBrowser(ctx, username, password, func(ctx context.Context, session *browser.Session) (string, error) {
		if err := session.Navigate(ctx, p.ProfileURL); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		pageText, err := session.BodyText(ctx)
		if err != nil {
			return "", err
		}

		record, err := t.ai.ExtractProfile(ctx, pageText)
		if err != nil {
			if errors.Is(err, ai.ErrNoStructuredData) {
				return "Failed to extract profile data using AI.", nil
			}
			return "", err
		}
		return extract.RenderCSV(extract.ProfileHeader, []extract.Record{record}), nil
	})
}
