package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/tools"
)

func newTestRouter(t *testing.T, registry map[string]tools.ToolFunc) chi.Router {
	t.Helper()
	handlers := NewHandlers(zap.NewNop(), registry, NewArchiveService(nil, zap.NewNop()), 2)
	r := chi.NewRouter()
	handlers.RegisterRoutes(r)
	return r
}

func postCommand(t *testing.T, router chi.Router, body string) (*httptest.ResponseRecorder, CommandResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/command", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestHandleCommand_DispatchesToTool(t *testing.T) {
	var gotParams map[string]any
	registry := map[string]tools.ToolFunc{
		"scrape_linkedin_post": func(_ context.Context, params map[string]any) string {
			gotParams = params
			return "name,headline,profile_url,email\n"
		},
	}
	router := newTestRouter(t, registry)

	rr, resp := postCommand(t, router,
		`{"command": "scrape_linkedin_post", "params": {"post_url": "https://x", "n": 5}}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "name,headline,profile_url,email\n", resp.Data)
	assert.Equal(t, "https://x", gotParams["post_url"])
}

func TestHandleCommand_UnknownCommand(t *testing.T) {
	router := newTestRouter(t, map[string]tools.ToolFunc{})

	rr, resp := postCommand(t, router, `{"command": "take_over_the_world"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Unknown command")
}

func TestHandleCommand_InvalidBody(t *testing.T) {
	router := newTestRouter(t, nil)

	rr, resp := postCommand(t, router, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, resp.Error, "Invalid request body")
}

func TestHandleCommand_ConcurrencyLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	// A tool that blocks until released, so concurrent requests pile up
	// against the semaphore.
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	registry := map[string]tools.ToolFunc{
		"slow_tool": func(context.Context, map[string]any) string {
			started <- struct{}{}
			<-release
			return "done"
		},
	}
	handlers := NewHandlers(zap.NewNop(), registry, NewArchiveService(nil, zap.NewNop()), 1)
	router := chi.NewRouter()
	handlers.RegisterRoutes(router)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/command",
			bytes.NewBufferString(`{"command": "slow_tool"}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}()
	<-started // the first invocation holds the only slot

	rr, resp := postCommand(t, router, `{"command": "slow_tool"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, msgServerBusy, resp.Error)

	close(release)
	wg.Wait()
}

func TestHandleCommand_HealthCheckBypassesSemaphore(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	registry := map[string]tools.ToolFunc{
		"slow_tool": func(context.Context, map[string]any) string {
			started <- struct{}{}
			<-release
			return "done"
		},
		"health_check": func(context.Context, map[string]any) string {
			return "healthy"
		},
	}
	handlers := NewHandlers(zap.NewNop(), registry, NewArchiveService(nil, zap.NewNop()), 1)
	router := chi.NewRouter()
	handlers.RegisterRoutes(router)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/command",
			bytes.NewBufferString(`{"command": "slow_tool"}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}()
	<-started

	rr, resp := postCommand(t, router, `{"command": "health_check"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", resp.Data)

	close(release)
	wg.Wait()
}

func TestHandleCommand_QueryRunsWithoutDatabase(t *testing.T) {
	router := newTestRouter(t, nil)

	rr, resp := postCommand(t, router, `{"command": "query_runs"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, resp.Error, "archive is unavailable")
}

func TestTargetFromParams(t *testing.T) {
	assert.Equal(t, "https://p",
		targetFromParams(map[string]any{"post_url": "https://p", "n": 5}))
	assert.Equal(t, "Acme",
		targetFromParams(map[string]any{"company_name": "Acme"}))
	assert.Empty(t, targetFromParams(map[string]any{"n": 5}))
	assert.Empty(t, targetFromParams(nil))
}
