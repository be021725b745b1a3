// Package ai wraps the Gemini API for the two model-backed operations:
// structured profile extraction and post generation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/linkscout/internal/config"
	"github.com/xkilldash9x/linkscout/internal/extract"
)

// ErrNoStructuredData means the model reply contained no JSON object at all.
var ErrNoStructuredData = errors.New("ai: no structured data in model response")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Generator produces one model completion for a prompt. The production
// implementation talks to Gemini; tests supply canned replies.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}

// Client runs profile extraction and content generation against a Generator.
type Client struct {
	gen     Generator
	logger  *zap.Logger
	timeout time.Duration
}

// NewClient builds a Gemini-backed client from configuration.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: api key is not configured")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	return &Client{
		gen:     &geminiGenerator{client: gc, model: cfg.Model},
		logger:  logger.Named("ai"),
		timeout: cfg.APITimeout,
	}, nil
}

// NewClientWithGenerator builds a client around an existing Generator.
func NewClientWithGenerator(gen Generator, logger *zap.Logger, timeout time.Duration) *Client {
	return &Client{gen: gen, logger: logger.Named("ai"), timeout: timeout}
}

// ExtractProfile cleans the raw profile page text, asks the model for a
// structured JSON rendition and flattens it into a ProfileRecord. A reply
// with no JSON object returns ErrNoStructuredData; a JSON object that fails
// to decode degrades to an all-empty record.
func (c *Client) ExtractProfile(ctx context.Context, pageText string) (extract.ProfileRecord, error) {
	cleaned := CleanProfileText(pageText)
	c.logger.Debug("Cleaned profile text.", zap.Int("chars", len(cleaned)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.gen.Generate(ctx, profilePrompt(cleaned))
	if err != nil {
		return extract.ProfileRecord{}, err
	}
	return ParseProfile(reply)
}

// GeneratePost asks the model for one ready-to-publish post on the subject.
// The description is optional steering feedback.
func (c *Client) GeneratePost(ctx context.Context, subject, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.gen.Generate(ctx, postPrompt(subject, description))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// jsonObjectPattern grabs the outermost {...} span so prose around the
// object does not break decoding.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// profilePayload is the shape the extraction prompt asks the model for.
type profilePayload struct {
	Name       string `json:"Name"`
	Headline   string `json:"Headline"`
	Location   string `json:"Location"`
	About      string `json:"About"`
	Experience []struct {
		Title     string `json:"Title"`
		Company   string `json:"Company"`
		StartDate string `json:"Start_Date"`
		EndDate   string `json:"End_Date"`
	} `json:"Experience"`
	Education []struct {
		Institution  string `json:"Institution"`
		Degree       string `json:"Degree"`
		FieldOfStudy string `json:"Field_of_Study"`
		StartDate    string `json:"Start_Date"`
		EndDate      string `json:"End_Date"`
	} `json:"Education"`
	Skills         string `json:"Skills"`
	Certifications string `json:"Certifications"`
	Languages      string `json:"Languages"`
}

// ParseProfile decodes a model reply into a flattened ProfileRecord. Code
// fences are stripped first; replies without a JSON object fail with
// ErrNoStructuredData, and undecodable objects yield an empty record.
func ParseProfile(reply string) (extract.ProfileRecord, error) {
	reply = strings.TrimSpace(reply)
	if strings.HasPrefix(reply, "```") {
		reply = strings.ReplaceAll(reply, "```json", "")
		reply = strings.ReplaceAll(reply, "```", "")
		reply = strings.TrimSpace(reply)
	}

	blob := jsonObjectPattern.FindString(reply)
	if blob == "" {
		return extract.ProfileRecord{}, ErrNoStructuredData
	}

	var payload profilePayload
	if err := json.UnmarshalFromString(blob, &payload); err != nil {
		return extract.ProfileRecord{}, nil
	}

	experiences := make([]string, 0, len(payload.Experience))
	for _, exp := range payload.Experience {
		s := fmt.Sprintf("%s at %s", exp.Title, exp.Company)
		if exp.StartDate != "" || exp.EndDate != "" {
			s += fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate)
		}
		experiences = append(experiences, s)
	}

	educations := make([]string, 0, len(payload.Education))
	for _, edu := range payload.Education {
		s := fmt.Sprintf("%s at %s", edu.Degree, edu.Institution)
		if edu.FieldOfStudy != "" {
			s += fmt.Sprintf(" (%s)", edu.FieldOfStudy)
		}
		if edu.StartDate != "" || edu.EndDate != "" {
			s += fmt.Sprintf(" [%s - %s]", edu.StartDate, edu.EndDate)
		}
		educations = append(educations, s)
	}

	return extract.ProfileRecord{
		Name:           payload.Name,
		Headline:       payload.Headline,
		Location:       payload.Location,
		About:          payload.About,
		Experience:     strings.Join(experiences, "; "),
		Education:      strings.Join(educations, "; "),
		Skills:         payload.Skills,
		Certifications: payload.Certifications,
		Languages:      payload.Languages,
	}, nil
}

// inlineBlobPattern strips {...} spans that LinkedIn embeds inline in the
// accessible text of a profile page.
var inlineBlobPattern = regexp.MustCompile(`\{.*?\}\s*`)

// CleanProfileText trims a raw body-text dump down to the profile content:
// everything before the "Skip to search" chrome marker is discarded, inline
// JSON-ish blobs are removed, and the dump is cut at the interests section.
func CleanProfileText(raw string) string {
	if raw == "" {
		return ""
	}

	var cleaned []string
	markerSeen := false
	for _, line := range strings.Split(raw, "\n") {
		if !markerSeen {
			markerSeen = strings.Contains(line, "Skip to search")
			continue
		}
		line = inlineBlobPattern.ReplaceAllString(line, "")
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
		if strings.Contains(line, "InterestsInterests") {
			break
		}
	}
	return strings.Join(cleaned, "\n")
}
