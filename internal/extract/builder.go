// File: internal/extract/builder.go
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// emailPattern matches a local@domain.tld shaped substring in free text.
var emailPattern = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.[A-Za-z]{2,}`)

// Builder maps one raw item fragment to a record, or rejects it.
type Builder interface {
	Build(fragment string) (Record, bool)
}

// Comment-entity selectors as rendered by the post comment feed.
const (
	commentMetaLink  = "a.comments-comment-meta__description-container"
	commentNameSpan  = commentMetaLink + " h3.comments-comment-meta__description span.comments-comment-meta__description-title"
	commentHeadline  = commentMetaLink + " div.comments-comment-meta__description-subtitle"
	commentBodySpan  = "span.comments-comment-item__main-content"
	replyMarker      = "@"
)

// CommentBuilder builds CommentRecords from comment-entity fragments. A
// record is accepted only when the body contains an email address and does
// not open with the reply marker; name and headline are best-effort and may
// stay empty.
type CommentBuilder struct{}

func (CommentBuilder) Build(fragment string) (Record, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, false
	}

	body := strings.TrimSpace(doc.Find(commentBodySpan).First().Text())
	email := emailPattern.FindString(body)
	if email == "" {
		return nil, false
	}
	if strings.HasPrefix(body, replyMarker) {
		return nil, false
	}

	profileURL := ""
	if href, ok := doc.Find(commentMetaLink).First().Attr("href"); ok {
		profileURL = strings.TrimSpace(href)
	}

	return CommentRecord{
		Name:       strings.TrimSpace(doc.Find(commentNameSpan).First().Text()),
		Headline:   strings.TrimSpace(doc.Find(commentHeadline).First().Text()),
		ProfileURL: profileURL,
		Email:      email,
	}, true
}

// Profile-card selectors as rendered by the company people page.
const (
	cardTitleLink   = ".artdeco-entity-lockup__title a"
	cardNameClamp   = cardTitleLink + " .lt-line-clamp"
	cardSubtitle    = ".artdeco-entity-lockup__subtitle .lt-line-clamp"
	anonymousMember = "LinkedIn Member"
)

// EmployeeBuilder builds EmployeeRecords from people-page profile cards.
// Anonymous cards ("LinkedIn Member") and cards without a name are rejected;
// tracking parameters are stripped from the profile URL so the dedup key is
// stable.
type EmployeeBuilder struct{}

func (EmployeeBuilder) Build(fragment string) (Record, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, false
	}

	name := strings.TrimSpace(doc.Find(cardNameClamp).First().Text())
	if name == "" || name == anonymousMember {
		return nil, false
	}

	profileURL := ""
	if href, ok := doc.Find(cardTitleLink).First().Attr("href"); ok {
		profileURL = strings.TrimSpace(href)
		if i := strings.IndexByte(profileURL, '?'); i >= 0 {
			profileURL = profileURL[:i]
		}
	}

	return EmployeeRecord{
		Name:       name,
		Headline:   strings.TrimSpace(doc.Find(cardSubtitle).First().Text()),
		ProfileURL: profileURL,
	}, true
}

// FindEmail exposes the email pattern for callers outside the builder flow.
func FindEmail(text string) string {
	return emailPattern.FindString(text)
}
