// File: internal/extract/extractor.go
package extract

import (
	"context"

	"go.uber.org/zap"
)

// ItemSource is the page-facing side of the pagination loop: advance the
// scroll position, snapshot the currently rendered item fragments, and drive
// the load-more control. browser.PageSource implements it against a live
// session; tests implement it with scripted batches.
type ItemSource interface {
	Scroll(ctx context.Context) error
	Items(ctx context.Context) ([]string, error)
	LoadMore(ctx context.Context) (bool, error)
}

// Extractor runs the SCROLLING -> SCANNING -> (LOADING_MORE | DONE) loop.
// It terminates when the record cap is reached, the round ceiling is hit, or
// two consecutive scans report the same nonzero item count with no load-more
// control left to click. Partial results are success.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger.Named("extractor")}
}

// Run executes the extraction loop. Results collected before an error are
// returned alongside it so callers can still surface partial output.
func (e *Extractor) Run(
	ctx context.Context,
	src ItemSource,
	builder Builder,
	maxRecords, maxRounds int,
) ([]Record, error) {
	if maxRecords <= 0 || maxRounds <= 0 {
		return nil, nil
	}

	var results []Record
	dedup := NewDedupIndex()
	prevCount := -1

	for round := 1; round <= maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		// SCROLLING: advance to the current extent so lazy content renders.
		if err := src.Scroll(ctx); err != nil {
			return results, err
		}

		// SCANNING: snapshot everything currently present.
		items, err := src.Items(ctx)
		if err != nil {
			return results, err
		}
		e.logger.Debug("Scan round.",
			zap.Int("round", round),
			zap.Int("items", len(items)),
			zap.Int("records", len(results)))

		if len(items) == prevCount && len(items) > 0 {
			// No-progress signal: the page stopped yielding new items.
			// LOADING_MORE is the only way forward.
			clicked, err := src.LoadMore(ctx)
			if err != nil {
				return results, err
			}
			if !clicked {
				e.logger.Debug("No progress and no load-more control, done.")
				return results, nil
			}
			continue
		}
		prevCount = len(items)

		added := 0
		for _, fragment := range items {
			record, ok := builder.Build(fragment)
			if !ok {
				continue
			}
			if dedup.Seen(record.Key()) {
				continue
			}
			results = append(results, record)
			added++
			if len(results) >= maxRecords {
				e.logger.Debug("Record cap reached.", zap.Int("records", len(results)))
				return results, nil
			}
		}

		if added == 0 {
			// The scan grew the item count but produced nothing new; try the
			// load-more control before giving the page another round.
			clicked, err := src.LoadMore(ctx)
			if err != nil {
				return results, err
			}
			if !clicked && len(items) == 0 {
				// An empty page with nothing to load is terminal.
				return results, nil
			}
		}
	}

	e.logger.Debug("Round ceiling reached.", zap.Int("records", len(results)))
	return results, nil
}
