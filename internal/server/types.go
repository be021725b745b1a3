// File: internal/server/types.go
package server

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CommandRequest defines the structure of the incoming JSON request.
type CommandRequest struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// CommandResponse defines the structure of the outgoing JSON response.
type CommandResponse struct {
	Status string `json:"status"` // "success" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RunRecord is one archived tool invocation.
type RunRecord struct {
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	Target    string    `json:"target"`
	Duration  int64     `json:"duration_ms"`
	Failed    bool      `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

// QueryRunsParams defines parameters for the "query_runs" command.
type QueryRunsParams struct {
	// Limit restricts the number of results. Defaults to 20, max 200.
	Limit int `json:"limit,omitempty"`
}

// DBPool defines the necessary interface for database interactions
// (satisfied by pgxpool.Pool and by pgxmock in tests).
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
