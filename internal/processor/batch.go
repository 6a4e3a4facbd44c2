// Package processor provides parallel batch scanning with a worker pool.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/engine"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/telemetry"
)

const defaultConcurrency = 10

// ScanResult holds the outcome of scanning a single URL in a batch.
// Index preserves the position of the URL in the request so callers
// can return results in submission order.
type ScanResult struct {
	Index  int
	URL    string
	Result *domain.AggregatedResult
	Err    error
}

// BatchProcessor scans multiple URLs in parallel using a worker pool.
type BatchProcessor struct {
	engine      *engine.Engine
	concurrency int
	log         logger.Logger
	telemetry   *telemetry.Provider
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(eng *engine.Engine, concurrency int, log logger.Logger, tp *telemetry.Provider) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &BatchProcessor{
		engine:      eng,
		concurrency: concurrency,
		log:         log,
		telemetry:   tp,
	}
}

// Process scans a batch of URLs against repo. Results are returned in
// submission order; per-URL failures are carried in ScanResult.Err so
// one bad URL never fails the batch.
func (b *BatchProcessor) Process(ctx context.Context, urls []string, repo domain.PatternRepository) []ScanResult {
	if len(urls) == 0 {
		return []ScanResult{}
	}

	b.log.Info("starting batch scan",
		logger.Int("batch_size", len(urls)),
		logger.Int("concurrency", b.concurrency))

	start := time.Now()

	jobs := make(chan int, len(urls))
	results := make([]ScanResult, len(urls))

	var wg sync.WaitGroup
	workers := b.concurrency
	if workers > len(urls) {
		workers = len(urls)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go b.worker(ctx, urls, repo, jobs, results, &wg)
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	success := 0
	for i := range results {
		if results[i].Err == nil {
			success++
		}
	}

	b.telemetry.RecordBatch(len(urls))
	b.log.Info("batch scan complete",
		logger.Int("total", len(urls)),
		logger.Int("success", success),
		logger.Int("errors", len(urls)-success),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()))

	return results
}

func (b *BatchProcessor) worker(
	ctx context.Context,
	urls []string,
	repo domain.PatternRepository,
	jobs <-chan int,
	results []ScanResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			results[idx] = ScanResult{Index: idx, URL: urls[idx], Err: ctx.Err()}
			continue
		default:
		}

		result, err := b.engine.Scan(ctx, urls[idx], repo)
		results[idx] = ScanResult{Index: idx, URL: urls[idx], Result: result, Err: err}
	}
}
