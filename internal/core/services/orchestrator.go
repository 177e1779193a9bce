package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/core/ports/driven"
	"github.com/four-robots/unisearch/internal/logger"
)

// Source outcome statuses reported to SearchMetrics.
const (
	statusSuccess = "success"
	statusError   = "error"
	statusTimeout = "timeout"
	statusSkipped = "skipped"
)

// SearchOrchestrator fans a processed query out to every applicable backend.
type SearchOrchestrator struct {
	log            *zap.Logger
	metrics        driven.SearchMetrics
	maxConcurrency int
	perSourceLimit int
}

// NewSearchOrchestrator creates an orchestrator.
// maxConcurrency <= 0 starts one goroutine per backend at once.
// metrics may be nil.
func NewSearchOrchestrator(
	log *zap.Logger, metrics driven.SearchMetrics, maxConcurrency, perSourceLimit int,
) *SearchOrchestrator {
	if perSourceLimit <= 0 {
		perSourceLimit = domain.DefaultPerSourceLimit
	}
	return &SearchOrchestrator{
		log:            logger.OrNop(log),
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
		perSourceLimit: perSourceLimit,
	}
}

// Execute queries every port concurrently and waits for all of them to settle.
//
// A port whose content types are all excluded by the request filter is not
// called; its outcome is an empty success. Every other port races against
// timeout: a late answer is discarded and the outcome records a timeout.
// Outcomes are returned in port order and Execute never fails as a whole.
func (o *SearchOrchestrator) Execute(
	ctx context.Context,
	query domain.ProcessedQuery,
	req domain.SearchRequest,
	ports []driven.SourcePort,
	timeout time.Duration,
) []domain.SourceOutcome {
	if timeout <= 0 {
		timeout = domain.DefaultSourceTimeout
	}

	sq := domain.SourceQuery{
		Text:     query.Normalized,
		Keywords: query.Keywords,
		Intent:   query.Intent,
		Filters:  req.Filters,
		Limit:    o.perSourceLimit,
		Timeout:  timeout,
		Semantic: req.Options.Semantic,
		Fuzzy:    req.Options.Fuzzy,
	}
	if sq.Text == "" {
		sq.Text = req.Query
	}

	outcomes := make([]domain.SourceOutcome, len(ports))

	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}

	for i, port := range ports {
		if !req.Filters.AllowsAnyType(port.ContentTypes()) {
			outcomes[i] = domain.SourceOutcome{
				Source:  port.ID(),
				Results: []domain.SearchResult{},
				Skipped: true,
			}
			o.log.Debug("source skipped by content-type filter", zap.String("source", port.ID()))
			continue
		}

		// Each task writes only its own slot.
		g.Go(func() error {
			outcomes[i] = o.run(ctx, port, sq, timeout)
			return nil
		})
	}

	_ = g.Wait()

	for _, outcome := range outcomes {
		o.observe(outcome)
	}

	return outcomes
}

// callResult carries a backend answer across the goroutine boundary.
type callResult struct {
	results []domain.SearchResult
	err     error
}

// run performs one backend call bounded by timeout.
func (o *SearchOrchestrator) run(
	ctx context.Context, port driven.SourcePort, sq domain.SourceQuery, timeout time.Duration,
) domain.SourceOutcome {
	id := port.ID()
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so a call that finishes after the timeout never blocks.
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		results, err := port.Search(callCtx, sq)
		done <- callResult{results: results, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		elapsed := time.Since(start)
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return o.timedOut(id, timeout)
			}
			o.log.Warn("source search failed",
				zap.String("source", id),
				zap.Duration("elapsed", elapsed),
				zap.Error(res.err))
			return domain.SourceOutcome{
				Source:  id,
				Results: []domain.SearchResult{},
				Elapsed: elapsed,
				Err:     fmt.Errorf("source %s: %w: %w", id, domain.ErrSourceFailed, res.err),
			}
		}

		results := make([]domain.SearchResult, 0, len(res.results))
		for _, r := range res.results {
			if r.Metadata.Source == "" {
				r.Metadata.Source = id
			}
			results = append(results, r)
		}
		o.log.Debug("source search completed",
			zap.String("source", id),
			zap.Int("results", len(results)),
			zap.Duration("elapsed", elapsed))
		return domain.SourceOutcome{Source: id, Results: results, Elapsed: elapsed}

	case <-timer.C:
		return o.timedOut(id, timeout)

	case <-ctx.Done():
		o.log.Warn("search cancelled while waiting for source", zap.String("source", id), zap.Error(ctx.Err()))
		return domain.SourceOutcome{
			Source:  id,
			Results: []domain.SearchResult{},
			Elapsed: time.Since(start),
			Err:     fmt.Errorf("source %s: %w: %w", id, domain.ErrSourceFailed, ctx.Err()),
		}
	}
}

func (o *SearchOrchestrator) timedOut(id string, timeout time.Duration) domain.SourceOutcome {
	o.log.Warn("source search timed out", zap.String("source", id), zap.Duration("timeout", timeout))
	return domain.SourceOutcome{
		Source:   id,
		Results:  []domain.SearchResult{},
		Elapsed:  timeout,
		Err:      fmt.Errorf("source %s: %w after %s", id, domain.ErrSourceTimeout, timeout),
		TimedOut: true,
	}
}

func (o *SearchOrchestrator) observe(outcome domain.SourceOutcome) {
	if o.metrics == nil {
		return
	}
	status := statusSuccess
	switch {
	case outcome.Skipped:
		status = statusSkipped
	case outcome.TimedOut:
		status = statusTimeout
	case outcome.Err != nil:
		status = statusError
	}
	o.metrics.ObserveSource(outcome.Source, status, outcome.Elapsed, len(outcome.Results))
}
