// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/linkscout/internal/config"
)

// Manager launches one isolated Chrome process per tool invocation. There is
// no shared browser: the invocation owns the allocator, the browsing context
// and the page start-to-finish, and must close them on every exit path.
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewManager creates a browser manager. Launching is deferred until a session
// is opened, so configuration errors can surface before any Chrome starts.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.Named("browser_manager"),
	}
}

// OpenSession launches Chrome and returns a live session. The caller must
// Close the session on all paths; Close is idempotent.
func (m *Manager) OpenSession(parentCtx context.Context) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(m.cfg.Browser.UserAgent),
	)
	if m.cfg.Browser.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.Browser.ChromePath))
	}
	for _, arg := range m.cfg.Browser.Args {
		opts = append(opts, chromedp.Flag(arg, true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:          uuid.New().String(),
		ctx:         taskCtx,
		cancel:      taskCancel,
		allocCancel: allocCancel,
		cfg:         m.cfg,
		limiter:     rate.NewLimiter(rate.Limit(m.cfg.Network.ActionsPerSecond), 1),
	}
	s.logger = m.logger.Named("session").With(zap.String("session_id", s.id))

	// Prime the browser so launch failures surface here, not on first use.
	if err := chromedp.Run(taskCtx, chromedp.Navigate("about:blank")); err != nil {
		taskCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.logger.Info("Browser session opened.", zap.Bool("headless", m.cfg.Browser.Headless))
	return s, nil
}
