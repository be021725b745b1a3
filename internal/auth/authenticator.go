// Package auth establishes an authenticated LinkedIn session, restoring a
// persisted cookie state when one exists and falling back to a credential
// login when it does not.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/network"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/config"
	"github.com/xkilldash9x/linkscout/internal/store"
)

// ErrLoginFailed means the credential login ran but the authenticated page
// marker never appeared. Wrong credentials, a checkpoint challenge and plain
// slowness are indistinguishable from out here.
var ErrLoginFailed = errors.New("auth: login failed or took too long")

const (
	feedURL  = "https://www.linkedin.com/feed/"
	loginURL = "https://www.linkedin.com/login"

	// loggedInMarker is visible on every authenticated page.
	loggedInMarker = "input[aria-label='Search']"
	usernameField  = "#username"
	passwordField  = "#password"
	loginSubmit    = "button[type='submit']"
)

// Page is the slice of the browser session the authenticator drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Cookies(ctx context.Context) ([]*network.Cookie, error)
	SetCookies(ctx context.Context, cookies []*network.Cookie) error
}

// Authenticator owns the login flow against one session store.
type Authenticator struct {
	store  *store.SessionStore
	net    config.NetworkConfig
	logger *zap.Logger
}

// NewAuthenticator creates an authenticator over the given state store.
func NewAuthenticator(st *store.SessionStore, net config.NetworkConfig, logger *zap.Logger) *Authenticator {
	return &Authenticator{store: st, net: net, logger: logger.Named("auth")}
}

// EnsureLogin brings the page into an authenticated state. Persisted cookies
// are restored first; if the feed then shows the authenticated marker within
// the short probe window, no credentials are touched at all. Otherwise a full
// credential login runs and, on success, the refreshed cookie state is
// persisted for the next run.
func (a *Authenticator) EnsureLogin(ctx context.Context, page Page, username, password string) error {
	if state, ok := a.store.Load(); ok {
		if err := page.SetCookies(ctx, state.Cookies); err != nil {
			a.logger.Warn("Could not restore persisted cookies.", zap.Error(err))
		} else {
			a.logger.Debug("Persisted session state restored.",
				zap.Time("saved_at", state.SavedAt),
				zap.Int("cookies", len(state.Cookies)))
		}
	}

	if err := page.Navigate(ctx, feedURL); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, loggedInMarker, a.net.MarkerProbeTimeout); err == nil {
		a.logger.Info("Existing session is still authenticated.")
		return nil
	}

	a.logger.Info("No live session, running credential login.")
	if err := page.Navigate(ctx, loginURL); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, usernameField, a.net.MarkerProbeTimeout); err != nil {
		return ErrLoginFailed
	}
	if err := page.Fill(ctx, usernameField, username); err != nil {
		return err
	}
	if err := page.Fill(ctx, passwordField, password); err != nil {
		return err
	}
	if err := page.Click(ctx, loginSubmit); err != nil {
		return err
	}

	// The long window covers slow redirects and manual challenge solving
	// when the browser runs headful.
	if err := page.WaitVisible(ctx, loggedInMarker, a.net.LoginTimeout); err != nil {
		return ErrLoginFailed
	}

	cookies, err := page.Cookies(ctx)
	if err != nil {
		a.logger.Warn("Login succeeded but cookies could not be read.", zap.Error(err))
		return nil
	}
	if err := a.store.Save(&store.State{SavedAt: time.Now().UTC(), Cookies: cookies}); err != nil {
		a.logger.Warn("Login succeeded but state could not be persisted.", zap.Error(err))
	}
	return nil
}
