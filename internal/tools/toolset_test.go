package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/browser"
	"github.com/xkilldash9x/linkscout/internal/config"
	"github.com/xkilldash9x/linkscout/internal/extract"
)

// newTestToolset builds a toolset with no configured credentials and no AI
// client. Tests here only exercise the validation paths that return before
// any browser launches.
func newTestToolset(t *testing.T) *Toolset {
	t.Helper()
	cfg := config.NewDefaultConfig()
	return &Toolset{
		cfg:       cfg,
		logger:    zap.NewNop(),
		browser:   browser.NewManager(cfg, zap.NewNop()),
		extractor: extract.NewExtractor(zap.NewNop()),
	}
}

type stubAI struct {
	post    string
	postErr error
}

func (s *stubAI) ExtractProfile(context.Context, string) (extract.ProfileRecord, error) {
	return extract.ProfileRecord{}, nil
}

func (s *stubAI) GeneratePost(_ context.Context, subject, description string) (string, error) {
	return s.post, s.postErr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestToolset(t)
	assert.Equal(t, msgHealthy, ts.HealthCheck(context.Background()))
}

func TestCredentials_ParamsTakePriority(t *testing.T) {
	ts := newTestToolset(t)
	ts.cfg.LinkedIn.Username = "cfg-user"
	ts.cfg.LinkedIn.Password = "cfg-pass"

	u, p, ok := ts.credentials("param-user", "param-pass")
	require.True(t, ok)
	assert.Equal(t, "param-user", u)
	assert.Equal(t, "param-pass", p)

	u, p, ok = ts.credentials("", "")
	require.True(t, ok)
	assert.Equal(t, "cfg-user", u)
	assert.Equal(t, "cfg-pass", p)
}

func TestCredentials_MissingEitherHalf(t *testing.T) {
	ts := newTestToolset(t)

	_, _, ok := ts.credentials("user-only", "")
	assert.False(t, ok)

	_, _, ok = ts.credentials("", "pass-only")
	assert.False(t, ok)
}

func TestScrapeLinkedInPost_Validation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.ScrapeLinkedInPost(ctx, ScrapePostParams{PostURL: "https://x"})
	assert.Equal(t, msgMissingCredentials, out)

	out = ts.ScrapeLinkedInPost(ctx, ScrapePostParams{Username: "u", Password: "p"})
	assert.Equal(t, "Error: post_url is required.", out)
}

func TestExtractCompanyEmployees_Validation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.ExtractCompanyEmployees(ctx, CompanyEmployeesParams{CompanyName: "Acme"})
	assert.Equal(t, msgMissingCredentials, out)

	out = ts.ExtractCompanyEmployees(ctx, CompanyEmployeesParams{Username: "u", Password: "p"})
	assert.Equal(t, "Error: Either company_name or company_url must be provided.", out)
}

func TestExtractLinkedInProfileData_Validation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.ExtractLinkedInProfileData(ctx, ProfileDataParams{ProfileURL: "https://x"})
	assert.Equal(t, msgMissingCredentials, out)

	// Credentials present but no AI client configured.
	out = ts.ExtractLinkedInProfileData(ctx, ProfileDataParams{
		ProfileURL: "https://x", Username: "u", Password: "p",
	})
	assert.Equal(t, msgMissingAPIKey, out)
}

func TestSendConnectionRequest_Validation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.SendConnectionRequest(ctx, ConnectionRequestParams{
		ProfileURL: "https://www.linkedin.com/in/someone/",
	})
	assert.Equal(t, msgMissingCredentials, out)

	out = ts.SendConnectionRequest(ctx, ConnectionRequestParams{
		Username: "u", Password: "p",
	})
	assert.Equal(t, "Error: profile_url is required.", out)

	out = ts.SendConnectionRequest(ctx, ConnectionRequestParams{
		Username: "u", Password: "p",
		ProfileURL: "https://example.com/in/someone/",
	})
	assert.Contains(t, out, "Invalid LinkedIn profile URL")

	out = ts.SendConnectionRequest(ctx, ConnectionRequestParams{
		Username: "u", Password: "p",
		ProfileURL: "https://www.linkedin.com/in/someone/",
		Message:    strings.Repeat("x", maxMessageLength+1),
	})
	assert.Contains(t, out, "Message too long (201 characters)")
}

func TestPostToLinkedIn_Validation(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.PostToLinkedIn(ctx, PostParams{Content: "hello"})
	assert.Equal(t, msgMissingCredentials, out)

	out = ts.PostToLinkedIn(ctx, PostParams{Username: "u", Password: "p", Content: "   "})
	assert.Equal(t, "Error: Content is required and cannot be empty.", out)

	out = ts.PostToLinkedIn(ctx, PostParams{
		Username: "u", Password: "p",
		Content: strings.Repeat("x", maxPostLength+1),
	})
	assert.Contains(t, out, "Content is too long (3001 characters)")
}

func TestGenerateLinkedInContent(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	out := ts.GenerateLinkedInContent(ctx, GenerateContentParams{})
	assert.Contains(t, out, "Subject is required")

	out = ts.GenerateLinkedInContent(ctx, GenerateContentParams{Subject: "ai", NumPosts: 21})
	assert.Equal(t, "Error: num_posts must be between 1 and 20.", out)

	out = ts.GenerateLinkedInContent(ctx, GenerateContentParams{Subject: "ai"})
	assert.Equal(t, msgMissingAPIKey, out)

	ts.WithAIClient(&stubAI{post: "the generated post"})
	out = ts.GenerateLinkedInContent(ctx, GenerateContentParams{Subject: "ai", Description: "punchy"})
	assert.Equal(t, "the generated post", out)

	ts.WithAIClient(&stubAI{postErr: errors.New("quota exceeded")})
	out = ts.GenerateLinkedInContent(ctx, GenerateContentParams{Subject: "ai"})
	assert.Equal(t, "Error generating AI content: quota exceeded", out)
}

func TestRegistry_DispatchAndParamDecoding(t *testing.T) {
	ts := newTestToolset(t)
	registry := ts.Registry()

	expected := []string{
		"health_check",
		"scrape_linkedin_post",
		"extract_company_employees",
		"extract_linkedin_profile_data",
		"send_connection_request",
		"post_to_linkedin",
		"generate_linkedin_content",
	}
	for _, name := range expected {
		assert.Contains(t, registry, name)
	}

	out := registry["health_check"](context.Background(), nil)
	assert.Equal(t, msgHealthy, out)

	// Params flow through decoding into the typed validation path.
	out = registry["send_connection_request"](context.Background(), map[string]any{
		"username":    "u",
		"password":    "p",
		"profile_url": "https://example.com/in/x",
	})
	assert.Contains(t, out, "Invalid LinkedIn profile URL")
}

func TestDecodeParams(t *testing.T) {
	var p ScrapePostParams
	err := decodeParams(map[string]any{
		"post_url": "https://www.linkedin.com/posts/x",
		"n":        5,
	}, &p)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/posts/x", p.PostURL)
	assert.Equal(t, 5, p.N)
}

func TestConnectFailureMessage(t *testing.T) {
	assert.Empty(t, connectFailureMessage(errors.New("boom")))
	assert.Equal(t, "Connect button not found in More menu.",
		connectFailureMessage(&connectUnavailableError{msg: "Connect button not found in More menu."}))
}
