// Package batch runs many per-URL pipeline items under one run report.
// Two pacing modes exist: sequential with a fixed delay between items
// for polite scraping, and bounded windows of concurrent items for bulk
// feed imports. One failed item never aborts the run; it lands in the
// report as errored and the run moves on.
package batch

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/restolead/catalog-cli/internal/model"
)

// Item is one unit of work in a run.
type Item struct {
	SourceURL string
	Do        func(ctx context.Context) (*model.ItemResult, error)
}

// Coordinator paces and aggregates items.
type Coordinator struct {
	log *zap.Logger
}

// New creates a Coordinator.
func New() *Coordinator {
	return &Coordinator{log: zap.L().Named("batch")}
}

// RunSequential processes items one at a time, sleeping delay between
// them. Cancellation is honored between items, never mid-item.
func (c *Coordinator) RunSequential(ctx context.Context, items []Item, delay time.Duration) (*model.RunReport, error) {
	report := model.NewRunReport()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "batch: run cancelled")
		}
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return report, eris.Wrap(ctx.Err(), "batch: run cancelled")
			}
		}
		report.Add(c.runItem(ctx, item))
		c.logProgress(i+1, len(items), report)
	}

	report.Finish()
	return report, nil
}

// RunWindowed processes items in concurrent windows of windowSize,
// sleeping delay between windows. Items inside a window run in
// parallel; windows never overlap.
func (c *Coordinator) RunWindowed(ctx context.Context, items []Item, windowSize int, delay time.Duration) (*model.RunReport, error) {
	if windowSize <= 0 {
		windowSize = 1
	}
	report := model.NewRunReport()

	for start := 0; start < len(items); start += windowSize {
		if err := ctx.Err(); err != nil {
			return report, eris.Wrap(err, "batch: run cancelled")
		}
		if start > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return report, eris.Wrap(ctx.Err(), "batch: run cancelled")
			}
		}

		end := start + windowSize
		if end > len(items) {
			end = len(items)
		}
		window := items[start:end]
		results := make([]model.ItemResult, len(window))

		g, gctx := errgroup.WithContext(ctx)
		for i, item := range window {
			g.Go(func() error {
				results[i] = c.runItem(gctx, item)
				return nil
			})
		}
		// Workers never return errors; Wait only observes ctx.
		_ = g.Wait()

		for _, res := range results {
			report.Add(res)
		}
		c.logProgress(end, len(items), report)
	}

	report.Finish()
	return report, nil
}

// runItem executes one item, converting its failure into an errored
// result instead of propagating it.
func (c *Coordinator) runItem(ctx context.Context, item Item) model.ItemResult {
	result, err := item.Do(ctx)
	if err != nil {
		c.log.Warn("item failed",
			zap.String("url", item.SourceURL),
			zap.Error(err))
		return model.ItemResult{
			SourceURL: item.SourceURL,
			Outcome:   model.OutcomeErrored,
			Error:     err.Error(),
		}
	}
	return *result
}

func (c *Coordinator) logProgress(done, total int, report *model.RunReport) {
	c.log.Info("progress",
		zap.Int("done", done),
		zap.Int("total", total),
		zap.Int("created", report.Created),
		zap.Int("merged", report.Merged),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored))
}
