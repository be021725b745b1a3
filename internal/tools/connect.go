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

const (
	profileURLPrefix = "https://www.linkedin.com/in/"
	maxMessageLength = 200
	openDropdown     = "div.artdeco-dropdown__content--is-open"
	connectedButtons = 2
)

var pendingCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "Pending",
		Scope:       "main button",
		Timeout:     2 * time.Second,
		Description: "pending invitation button",
	},
	{
		Kind:        browser.KindText,
		Selector:    "Withdraw",
		Scope:       "main button",
		Timeout:     time.Second,
		Description: "withdraw invitation button",
	},
}

var moreButtonCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "More",
		Scope:       "main button",
		Timeout:     10 * time.Second,
		Description: "profile more-actions button",
	},
}

var connectButtonCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "Connect",
		Scope:       "main button",
		Timeout:     3 * time.Second,
		Description: "primary connect button",
	},
}

var dropdownConnectCascade = []browser.Strategy{
	{
		Kind:        browser.KindText,
		Selector:    "Connect",
		Scope:       openDropdown + ` [role="button"] span`,
		Timeout:     10 * time.Second,
		Description: "connect option inside more dropdown",
	},
}

var addNoteCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `button[aria-label="Add a note"]`,
		Timeout:     5 * time.Second,
		Description: "add-a-note button",
	},
}

var sendInvitationCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `button[aria-label="Send invitation"]`,
		Timeout:     5 * time.Second,
		Description: "send-invitation button",
	},
}

var sendWithoutNoteCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `button[aria-label="Send without a note"]`,
		Timeout:     5 * time.Second,
		Description: "send-without-a-note button",
	},
}

// SendConnectionRequest sends a connection request to a profile, optionally
// with a note. Pending and already-connected profiles are detected first and
// reported as skips.
func (t *Toolset) SendConnectionRequest(ctx context.Context, p ConnectionRequestParams) string {
	username, password, ok := t.credentials(p.Username, p.Password)
	if !ok {
		return msgMissingCredentials
	}
	if p.ProfileURL == "" {
		return "Error: profile_url is required."
	}
	if !strings.HasPrefix(p.ProfileURL, profileURLPrefix) {
		return "Error: Invalid LinkedIn profile URL. URL should start with 'https://www.linkedin.com/in/'"
	}
	if len(p.Message) > maxMessageLength {
		return fmt.Sprintf("Error: Message too long (%d characters). Maximum allowed is %d characters.",
			len(p.Message), maxMessageLength)
	}

	t.logger.Info("Sending connection request.",
		zap.String("profile_url", p.ProfileURL),
		zap.Bool("with_message", p.Message != ""))

	return t.withBrowser(ctx, username, password, func(ctx context.Context, session *browser.Session) (string, error) {
		if err := session.Navigate(ctx, p.ProfileURL); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		resolver := browser.NewResolver(session, t.logger)

		// An outstanding invitation shows Pending or Withdraw in the header.
		if _, err := resolver.Resolve(ctx, pendingCascade); err == nil {
			return "Connection request already pending. Skipping...", nil
		}

		// Connected profiles show exactly two primary actions next to More.
		if more, err := resolver.Resolve(ctx, moreButtonCascade); err == nil {
			count, err := session.CountSiblingButtons(ctx, more)
			if err != nil {
				return "", err
			}
			if count == connectedButtons {
				return "Already connected. Skipping...", nil
			}
		}

		if err := t.openConnectDialog(ctx, session, resolver); err != nil {
			if msg := connectFailureMessage(err); msg != "" {
				return msg, nil
			}
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		if err := t.submitInvitation(ctx, session, resolver, p.Message); err != nil {
			return "", err
		}
		if err := session.Settle(ctx); err != nil {
			return "", err
		}

		if p.Message != "" {
			return fmt.Sprintf("Connection request sent successfully to %s with message: '%s'", p.ProfileURL, p.Message), nil
		}
		return fmt.Sprintf("Connection request sent successfully to %s", p.ProfileURL), nil
	})
}

// connectUnavailableError marks the places where a missing control is a
// user-facing outcome rather than an internal failure.
type connectUnavailableError struct{ msg string }

func (e *connectUnavailableError) Error() string { return e.msg }

func connectFailureMessage(err error) string {
	var unavailable *connectUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.msg
	}
	return ""
}

// openConnectDialog clicks the Connect control, either directly from the
// profile header or through the More dropdown.
func (t *Toolset) openConnectDialog(ctx context.Context, session *browser.Session, resolver *browser.Resolver) error {
	if connect, err := resolver.Resolve(ctx, connectButtonCascade); err == nil {
		if _, err := session.ClickMatch(ctx, connect); err != nil {
			return err
		}
		return nil
	}

	more, err := resolver.Resolve(ctx, moreButtonCascade)
	if err != nil {
		return &connectUnavailableError{msg: "Neither Connect nor More button found on main profile."}
	}
	if _, err := session.ClickMatch(ctx, more); err != nil {
		return err
	}
	if err := session.Settle(ctx); err != nil {
		return err
	}

	option, err := resolver.Resolve(ctx, dropdownConnectCascade)
	if err != nil {
		return &connectUnavailableError{msg: "Connect button not found in More menu."}
	}
	if _, err := session.ClickMatch(ctx, option); err != nil {
		return err
	}
	return nil
}

// submitInvitation drives the invitation popup: with a note when a message is
// given and the note flow is available, plain otherwise.
func (t *Toolset) submitInvitation(ctx context.Context, session *browser.Session, resolver *browser.Resolver, message string) error {
	if message != "" {
		if addNote, err := resolver.Resolve(ctx, addNoteCascade); err == nil {
			if _, err := session.ClickMatch(ctx, addNote); err != nil {
				return err
			}
			if err := session.WaitVisible(ctx, `textarea[name="message"]`, 10*time.Second); err != nil {
				return err
			}
			if err := session.Fill(ctx, `textarea[name="message"]`, message); err != nil {
				return err
			}
			send, err := resolver.Resolve(ctx, sendInvitationCascade)
			if err != nil {
				return err
			}
			_, err = session.ClickMatch(ctx, send)
			return err
		}
		t.logger.Info("Add-a-note control absent, sending without a note.")
	}

	send, err := resolver.Resolve(ctx, sendWithoutNoteCascade)
	if err != nil {
		return err
	}
	_, err = session.ClickMatch(ctx, send)
	return err
}
