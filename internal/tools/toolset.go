// Package tools implements the tool surface of the server. Every tool takes
// named parameters and returns a single string: CSV, a status message, or
// generated text. Failures degrade to explanatory strings at this boundary;
// nothing panics past it and no error types leak to callers.
package tools

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/ai"
	"github.com/xkilldash9x/linkscout/internal/auth"
	"github.com/xkilldash9x/linkscout/internal/browser"
	"github.com/xkilldash9x/linkscout/internal/config"
	"github.com/xkilldash9x/linkscout/internal/extract"
	"github.com/xkilldash9x/linkscout/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	msgMissingCredentials = "Missing LinkedIn credentials. Please provide username and password parameters or set LINKEDIN_USERNAME and LINKEDIN_PASSWORD environment variables."
	msgMissingAPIKey      = "Missing Google API key. Please set GOOGLE_API_KEY environment variable."
	msgLoginFailed        = "Login failed or took too long."
	msgUnexpectedFailure  = "Error: unexpected failure during browser automation."
	msgHealthy            = "LinkedIn automation server is healthy and ready."
)

// AIClient is the slice of the Gemini wrapper the tools use.
type AIClient interface {
	ExtractProfile(ctx context.Context, pageText string) (extract.ProfileRecord, error)
	GeneratePost(ctx context.Context, subject, description string) (string, error)
}

// Toolset owns the collaborators every tool invocation is assembled from.
type Toolset struct {
	cfg       *config.Config
	logger    *zap.Logger
	browser   *browser.Manager
	auth      *auth.Authenticator
	extractor *extract.Extractor
	ai        AIClient // nil when no API key is configured
}

// NewToolset wires the toolset from configuration. The AI client stays nil
// when no API key is configured; the tools that need it return a config error
// string instead of failing construction.
func NewToolset(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Toolset, error) {
	sessionStore, err := store.NewSessionStore(cfg.Session.StatePath, logger)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	t := &Toolset{
		cfg:       cfg,
		logger:    logger.Named("tools"),
		browser:   browser.NewManager(cfg, logger),
		auth:      auth.NewAuthenticator(sessionStore, cfg.Network, logger),
		extractor: extract.NewExtractor(logger),
	}
	if cfg.AI.APIKey != "" {
		client, err := ai.NewClient(ctx, cfg.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("ai client: %w", err)
		}
		t.ai = client
	}
	return t, nil
}

// WithAIClient swaps the AI collaborator. Used by tests and by callers that
// construct the Gemini client themselves.
func (t *Toolset) WithAIClient(client AIClient) *Toolset {
	t.ai = client
	return t
}

// credentials resolves the LinkedIn credential pair: explicit parameters win,
// configuration (env-bound) is the fallback.
func (t *Toolset) credentials(username, password string) (string, string, bool) {
	if username == "" {
		username = t.cfg.LinkedIn.Username
	}
	if password == "" {
		password = t.cfg.LinkedIn.Password
	}
	return username, password, username != "" && password != ""
}

// withBrowser runs fn inside a fully authenticated browser session. It owns
// the whole lifecycle: launch, login, guaranteed teardown on every exit path
// including panics, and the degradation of errors to user-facing strings.
func (t *Toolset) withBrowser(
	ctx context.Context,
	username, password string,
	fn func(ctx context.Context, session *browser.Session) (string, error),
) (out string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Recovered panic in tool invocation.", zap.Any("panic", r))
			out = msgUnexpectedFailure
		}
	}()

	session, err := t.browser.OpenSession(ctx)
	if err != nil {
		t.logger.Error("Browser launch failed.", zap.Error(err))
		return "Error: " + err.Error()
	}
	defer session.Close()

	if err := t.auth.EnsureLogin(ctx, session, username, password); err != nil {
		if errors.Is(err, auth.ErrLoginFailed) {
			return msgLoginFailed
		}
		t.logger.Error("Login flow failed.", zap.Error(err))
		return "Error: " + err.Error()
	}

	result, err := fn(ctx, session)
	if err != nil {
		t.logger.Error("Tool execution failed.", zap.Error(err))
		return "Error: " + err.Error()
	}
	return result
}

// HealthCheck reports server readiness.
func (t *Toolset) HealthCheck(context.Context) string {
	return msgHealthy
}

// ToolFunc is one registered tool: loosely-typed params in, one string out.
type ToolFunc func(ctx context.Context, params map[string]any) string

// decodeParams maps loose JSON params onto a typed parameter struct.
func decodeParams(params map[string]any, out any) error {
	blob, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

// Registry returns the command table the server dispatches on.
func (t *Toolset) Registry() map[string]ToolFunc {
	return map[string]ToolFunc{
		"health_check": func(ctx context.Context, _ map[string]any) string {
			return t.HealthCheck(ctx)
		},
		"scrape_linkedin_post": func(ctx context.Context, params map[string]any) string {
			var p ScrapePostParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.ScrapeLinkedInPost(ctx, p)
		},
		"extract_company_employees": func(ctx context.Context, params map[string]any) string {
			var p CompanyEmployeesParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.ExtractCompanyEmployees(ctx, p)
		},
		"extract_linkedin_profile_data": func(ctx context.Context, params map[string]any) string {
			var p ProfileDataParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.ExtractLinkedInProfileData(ctx, p)
		},
		"send_connection_request": func(ctx context.Context, params map[string]any) string {
			var p ConnectionRequestParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.SendConnectionRequest(ctx, p)
		},
		"post_to_linkedin": func(ctx context.Context, params map[string]any) string {
			var p PostParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.PostToLinkedIn(ctx, p)
		},
		"generate_linkedin_content": func(ctx context.Context, params map[string]any) string {
			var p GenerateContentParams
			if err := decodeParams(params, &p); err != nil {
				return "Error: " + err.Error()
			}
			return t.GenerateLinkedInContent(ctx, p)
		},
	}
}

// ScrapePostParams are the parameters of scrape_linkedin_post.
type ScrapePostParams struct {
	PostURL  string `json:"post_url"`
	N        int    `json:"n"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CompanyEmployeesParams are the parameters of extract_company_employees.
type CompanyEmployeesParams struct {
	CompanyName  string `json:"company_name"`
	CompanyURL   string `json:"company_url"`
	MaxEmployees int    `json:"max_employees"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// ProfileDataParams are the parameters of extract_linkedin_profile_data.
type ProfileDataParams struct {
	ProfileURL string `json:"profile_url"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// ConnectionRequestParams are the parameters of send_connection_request.
type ConnectionRequestParams struct {
	ProfileURL string `json:"profile_url"`
	Message    string `json:"message"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// PostParams are the parameters of post_to_linkedin.
type PostParams struct {
	Content  string `json:"content"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// GenerateContentParams are the parameters of generate_linkedin_content.
type GenerateContentParams struct {
	Subject     string `json:"subject"`
	NumPosts    int    `json:"num_posts"`
	Description string `json:"description"`
}
