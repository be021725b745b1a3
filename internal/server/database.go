// File: internal/server/database.go
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ArchiveService records tool invocations when a database is configured.
// The archive is strictly best-effort: a down database never fails a tool
// call, it only costs a warning.
type ArchiveService struct {
	pool DBPool
	log  *zap.Logger
}

// NewArchiveService creates the archive over an optional pool.
func NewArchiveService(pool DBPool, logger *zap.Logger) *ArchiveService {
	if pool == nil {
		logger.Warn("ArchiveService initialized without a database. Runs will not be recorded.")
	}
	return &ArchiveService{
		pool: pool,
		log:  logger.Named("archive"),
	}
}

// Enabled reports whether runs are actually being recorded.
func (s *ArchiveService) Enabled() bool {
	return s.pool != nil
}

// RecordRun inserts one invocation row. Failures are logged, never returned.
func (s *ArchiveService) RecordRun(ctx context.Context, rec RunRecord) {
	if s.pool == nil {
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
        INSERT INTO runs (id, tool, target, duration_ms, failed, started_at)
        VALUES ($1, $2, $3, $4, $5, $6);
    `
	if _, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Tool, rec.Target, rec.Duration, rec.Failed, rec.StartedAt,
	); err != nil {
		s.log.Warn("Failed to archive run.",
			zap.String("tool", rec.Tool),
			zap.Error(err))
	}
}

// RecentRuns returns the most recent invocation rows, newest first.
func (s *ArchiveService) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	query := `
        SELECT id, tool, target, duration_ms, failed, started_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1;
    `
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Target, &rec.Duration, &rec.Failed, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.StartedAt = startedAt
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run rows iteration failed: %w", err)
	}
	return runs, nil
}
