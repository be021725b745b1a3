package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := NewSessionStore(path, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLoad_AbsentFile(t *testing.T) {
	s := newTestStore(t)

	state, ok := s.Load()
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestLoad_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	state, ok := s.Load()
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	saved := &State{
		Cookies: []*network.Cookie{
			{Name: "li_at", Value: "token", Domain: ".linkedin.com", Path: "/", Secure: true, HTTPOnly: true},
			{Name: "JSESSIONID", Value: "ajax:1", Domain: ".www.linkedin.com", Path: "/"},
		},
	}
	require.NoError(t, s.Save(saved))

	// A fresh store over the same path simulates a new process.
	reopened, err := NewSessionStore(s.Path(), zap.NewNop())
	require.NoError(t, err)

	state, ok := reopened.Load()
	require.True(t, ok)
	require.Len(t, state.Cookies, 2)
	assert.Equal(t, "li_at", state.Cookies[0].Name)
	assert.Equal(t, "token", state.Cookies[0].Value)
	assert.True(t, state.Cookies[0].Secure)
	assert.False(t, state.SavedAt.IsZero())
}

func TestSave_Overwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(&State{Cookies: []*network.Cookie{{Name: "old", Value: "1"}}}))
	require.NoError(t, s.Save(&State{Cookies: []*network.Cookie{{Name: "new", Value: "2"}}}))

	state, ok := s.Load()
	require.True(t, ok)
	require.Len(t, state.Cookies, 1)
	assert.Equal(t, "new", state.Cookies[0].Name)
}

func TestLoad_EmptyCookieSet(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"cookies":[]}`), 0o600))

	_, ok := s.Load()
	assert.False(t, ok)
}
