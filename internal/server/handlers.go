// File: internal/server/handlers.go
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/linkscout/internal/tools"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const msgServerBusy = "Server is busy: the maximum number of concurrent browser invocations is already running. Try again shortly."

// Handlers manages the HTTP request handling for the tool server.
type Handlers struct {
	log      *zap.Logger
	registry map[string]tools.ToolFunc
	archive  *ArchiveService
	// invocations bounds concurrent browser-backed tool runs. Each run owns
	// a full Chrome process, so the weight stays small.
	invocations *semaphore.Weighted
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *zap.Logger, registry map[string]tools.ToolFunc, archive *ArchiveService, maxInvocations int) *Handlers {
	if maxInvocations <= 0 {
		maxInvocations = 2
	}
	return &Handlers{
		log:         logger.Named("handlers"),
		registry:    registry,
		archive:     archive,
		invocations: semaphore.NewWeighted(int64(maxInvocations)),
	}
}

// RegisterRoutes sets up the routing for the tool server.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/command", h.HandleCommand)
	})
}

// HandleHealthCheck is a simple handler to confirm the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleCommand is the main entry point for tool commands.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	command := strings.ToLower(strings.TrimSpace(req.Command))
	h.log.Info("Received command.", zap.String("command", command))

	if command == "query_runs" {
		h.handleQueryRuns(w, r, req.Params)
		return
	}

	tool, ok := h.registry[command]
	if !ok {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown command: %s", req.Command))
		return
	}

	// health_check is free; everything else may own a browser.
	if command != "health_check" {
		if !h.invocations.TryAcquire(1) {
			h.respondWithError(w, http.StatusTooManyRequests, msgServerBusy)
			return
		}
		defer h.invocations.Release(1)
	}

	started := time.Now()
	result := tool(r.Context(), req.Params)
	h.archive.RecordRun(r.Context(), RunRecord{
		Tool:      command,
		Target:    targetFromParams(req.Params),
		Duration:  time.Since(started).Milliseconds(),
		Failed:    strings.HasPrefix(result, "Error"),
		StartedAt: started.UTC(),
	})

	h.respondWithSuccess(w, http.StatusOK, result)
}

// handleQueryRuns processes the "query_runs" command.
func (h *Handlers) handleQueryRuns(w http.ResponseWriter, r *http.Request, paramsMap map[string]any) {
	if h.archive == nil || !h.archive.Enabled() {
		h.respondWithError(w, http.StatusServiceUnavailable, "Run archive is unavailable (database not configured).")
		return
	}

	params, err := mapToStruct[QueryRunsParams](paramsMap)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid parameters for query_runs: %v", err))
		return
	}

	runs, err := h.archive.RecentRuns(r.Context(), params.Limit)
	if err != nil {
		h.log.Error("Failed to query runs.", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Internal error retrieving runs.")
		return
	}

	h.respondWithSuccess(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

// targetFromParams pulls the most descriptive target field out of loose
// params for the archive row.
func targetFromParams(params map[string]any) string {
	for _, key := range []string{"post_url", "profile_url", "company_url", "company_name", "subject"} {
		if v, ok := params[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// mapToStruct converts a generic params map to a typed struct via JSON.
func mapToStruct[T any](m map[string]any) (T, error) {
	var result T
	if m == nil {
		return result, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(data, &result)
	return result, err
}

// respondWithError sends a standardized JSON error response.
func (h *Handlers) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	h.writeResponse(w, statusCode, CommandResponse{Status: "error", Error: message})
}

// respondWithSuccess sends a standardized JSON success response.
func (h *Handlers) respondWithSuccess(w http.ResponseWriter, statusCode int, data any) {
	h.writeResponse(w, statusCode, CommandResponse{Status: "success", Data: data})
}

func (h *Handlers) writeResponse(w http.ResponseWriter, statusCode int, resp CommandResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response.", zap.Error(err))
	}
}
