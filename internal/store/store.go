// Package store persists authenticated browser-session state between tool
// invocations so repeat calls can skip the interactive login flow.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

const defaultStateFile = "linkedin-state.json"

// State is the persisted session blob: the full cookie set of an
// authenticated browser context plus a save timestamp.
type State struct {
	SavedAt time.Time         `json:"saved_at"`
	Cookies []*network.Cookie `json:"cookies"`
}

// SessionStore reads and writes the session state file. There is no locking:
// concurrent invocations sharing the file may race, last writer wins. This is
// an accepted limitation for single-operator usage.
type SessionStore struct {
	path   string
	logger *zap.Logger
}

// NewSessionStore creates a store for the given path. An empty path resolves
// to ~/.linkscout/linkedin-state.json.
func NewSessionStore(path string, logger *zap.Logger) (*SessionStore, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".linkscout", defaultStateFile)
	}
	return &SessionStore{path: path, logger: logger.Named("session_store")}, nil
}

// Path returns the resolved state file location.
func (s *SessionStore) Path() string {
	return s.path
}

// Load returns the persisted state, or (nil, false) when no usable state
// exists. A missing or unparsable file is the normal "first run" case, not an
// error.
func (s *SessionStore) Load() (*State, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("Session state unreadable, treating as absent.", zap.Error(err))
		}
		return nil, false
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Session state corrupt, treating as absent.", zap.Error(err))
		return nil, false
	}
	if len(state.Cookies) == 0 {
		return nil, false
	}

	s.logger.Debug("Loaded session state.",
		zap.Int("cookies", len(state.Cookies)),
		zap.Time("saved_at", state.SavedAt))
	return &state, true
}

// Save overwrites the state file unconditionally.
func (s *SessionStore) Save(state *State) error {
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	s.logger.Info("Session state persisted.", zap.String("path", s.path), zap.Int("cookies", len(state.Cookies)))
	return nil
}
