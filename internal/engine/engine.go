// Package engine exposes the two operations of the URL risk-scoring engine:
// parsing a raw URL into its components and scanning it against a pattern
// repository for a full classification.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/phishguard/phishguard/internal/analyzer"
	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/telemetry"
	"github.com/phishguard/phishguard/internal/urlparse"
)

// ErrRepository marks a pattern-repository failure. It is distinct from a
// ParseError: one is a dependency failure, the other a client input problem.
// A repository failure is fatal to the scan; it is never downgraded to a
// "safe" score.
var ErrRepository = errors.New("pattern repository unavailable")

// RepositoryError wraps an analyzer's repository failure with the component
// that hit it. errors.Is(err, ErrRepository) matches it.
type RepositoryError struct {
	Component string
	Err       error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s analyzer: %v", e.Component, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRepository.
func (e *RepositoryError) Is(target error) bool { return target == ErrRepository }

// Engine orchestrates the five component analyzers and the aggregator.
// It holds no per-scan state; every scan builds fresh values that are
// discarded once the aggregated result is returned.
type Engine struct {
	weights    analyzer.ScoringWeights
	domainA    *analyzer.DomainAnalyzer
	subdomainA *analyzer.SubdomainAnalyzer
	pathA      *analyzer.PathAnalyzer
	queryA     *analyzer.QueryAnalyzer
	heuristicA *analyzer.HeuristicAnalyzer
	logger     logger.Logger
	telemetry  *telemetry.Provider
}

// New creates an engine with the given scoring weights.
func New(log logger.Logger, tp *telemetry.Provider, w analyzer.ScoringWeights) *Engine {
	return &Engine{
		weights:    w,
		domainA:    analyzer.NewDomainAnalyzer(log, tp, w),
		subdomainA: analyzer.NewSubdomainAnalyzer(log, tp),
		pathA:      analyzer.NewPathAnalyzer(tp),
		queryA:     analyzer.NewQueryAnalyzer(tp),
		heuristicA: analyzer.NewHeuristicAnalyzer(tp),
		logger:     log,
		telemetry:  tp,
	}
}

// ParseURL parses a raw URL string into its structural components.
func (e *Engine) ParseURL(raw string) (*domain.URLComponents, error) {
	return urlparse.Parse(raw)
}

// Scan parses raw and runs the five analyzers in parallel against repo,
// then aggregates their results. The analyzers are independent and the
// repository is read-only for the duration of the scan, so no
// synchronization is needed beyond the final join.
func (e *Engine) Scan(ctx context.Context, raw string, repo domain.PatternRepository) (*domain.AggregatedResult, error) {
	start := time.Now()

	components, err := urlparse.Parse(raw)
	if err != nil {
		return nil, err
	}

	var span trace.Span
	if e.telemetry != nil {
		ctx, span = e.telemetry.Tracer.Start(ctx, "engine.scan",
			trace.WithAttributes(attribute.String("url_hash", components.URLHash)))
		defer span.End()
	}

	var (
		wg           sync.WaitGroup
		domainR      *domain.ComponentResult
		subdomainR   *domain.ComponentResult
		pathR        *domain.ComponentResult
		queryR       *domain.ComponentResult
		heuristicsR  *domain.ComponentResult
		domainErr    error
		subdomainErr error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		domainR, domainErr = e.domainA.Analyze(ctx, components, repo)
	}()
	go func() {
		defer wg.Done()
		subdomainR, subdomainErr = e.subdomainA.Analyze(ctx, components, repo)
	}()
	go func() {
		defer wg.Done()
		pathR = e.pathA.Analyze(ctx, components)
	}()
	go func() {
		defer wg.Done()
		queryR = e.queryA.Analyze(ctx, components)
	}()
	go func() {
		defer wg.Done()
		heuristicsR = e.heuristicA.Analyze(ctx, components)
	}()
	wg.Wait()

	if domainErr != nil {
		return nil, &RepositoryError{Component: domain.ComponentDomain, Err: domainErr}
	}
	if subdomainErr != nil {
		return nil, &RepositoryError{Component: domain.ComponentSubdomain, Err: subdomainErr}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("scan canceled: %w", ctxErr)
	}

	result := analyzer.Aggregate(domainR, subdomainR, pathR, queryR, heuristicsR, e.weights.Aggregator)
	result.URLHash = components.URLHash
	result.URL = components.Original
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	result.ScannedAt = time.Now()

	e.telemetry.RecordScan(result.Classification, time.Since(start))
	e.logger.Debug("scan complete",
		logger.String("url_hash", result.URLHash),
		logger.Float64("final_score", result.FinalScore),
		logger.String("classification", result.Classification),
		logger.Int64("processing_time_ms", result.ProcessingTimeMs),
	)

	return result, nil
}
