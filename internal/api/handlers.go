package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/phishguard/internal/cache"
	"github.com/phishguard/phishguard/internal/database"
	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/engine"
	"github.com/phishguard/phishguard/internal/logger"
	"github.com/phishguard/phishguard/internal/processor"
	"github.com/phishguard/phishguard/internal/urlparse"
)

const (
	defaultScansLimit = 50
	maxScansLimit     = 500
)

// Handler handles HTTP requests for the phishguard API.
type Handler struct {
	engine         *engine.Engine
	batchProcessor *processor.BatchProcessor
	limiter        *processor.RateLimiter
	snapshots      *database.SnapshotProvider
	patternsRepo   *database.PatternsRepository
	legitimateRepo *database.LegitimateDomainsRepository
	historyRepo    *database.ScanHistoryRepository
	results        *cache.ResultCache
	pingDB         func() error
	log            logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	eng *engine.Engine,
	batchProcessor *processor.BatchProcessor,
	limiter *processor.RateLimiter,
	snapshots *database.SnapshotProvider,
	patternsRepo *database.PatternsRepository,
	legitimateRepo *database.LegitimateDomainsRepository,
	historyRepo *database.ScanHistoryRepository,
	results *cache.ResultCache,
	pingDB func() error,
	log logger.Logger,
) *Handler {
	return &Handler{
		engine:         eng,
		batchProcessor: batchProcessor,
		limiter:        limiter,
		snapshots:      snapshots,
		patternsRepo:   patternsRepo,
		legitimateRepo: legitimateRepo,
		historyRepo:    historyRepo,
		results:        results,
		pingDB:         pingDB,
		log:            log,
	}
}

// Scan handles POST /api/v1/scan.
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if h.limiter != nil && !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "scan rate limit exceeded"})
		return
	}

	// A cache hit skips parsing only when the URL parses to the same hash,
	// so parse first.
	components, err := h.engine.ParseURL(req.URL)
	if err != nil {
		var parseErr *urlparse.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusBadRequest, ScanResponse{Error: parseErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ScanResponse{Error: err.Error()})
		return
	}

	if cached := h.results.Get(ctx, components.URLHash); cached != nil {
		c.JSON(http.StatusOK, ScanResponse{Result: cached, Cached: true})
		return
	}

	snap, err := h.snapshots.Current(ctx)
	if err != nil {
		h.log.Error("pattern snapshot unavailable", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, ScanResponse{Error: "pattern data unavailable"})
		return
	}

	result, err := h.engine.Scan(ctx, req.URL, snap)
	if err != nil {
		h.log.Error("scan failed", logger.String("url", req.URL), logger.Error(err))
		c.JSON(http.StatusInternalServerError, ScanResponse{Error: err.Error()})
		return
	}

	h.results.Set(ctx, result)
	h.recordScan(c, result)

	c.JSON(http.StatusOK, ScanResponse{Result: result})
}

// ScanBatch handles POST /api/v1/scan/batch.
func (h *Handler) ScanBatch(c *gin.Context) {
	var req BatchScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	snap, err := h.snapshots.Current(ctx)
	if err != nil {
		h.log.Error("pattern snapshot unavailable", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pattern data unavailable"})
		return
	}

	results := h.batchProcessor.Process(ctx, req.URLs, snap)

	resp := BatchScanResponse{
		Results: make([]BatchScanItem, 0, len(results)),
		Total:   len(results),
	}
	for _, r := range results {
		item := BatchScanItem{URL: r.URL}
		if r.Err != nil {
			item.Error = r.Err.Error()
			resp.Failed++
		} else {
			item.Result = r.Result
			resp.Success++
			h.results.Set(ctx, r.Result)
			h.recordScan(c, r.Result)
		}
		resp.Results = append(resp.Results, item)
	}

	c.JSON(http.StatusOK, resp)
}

// Validate handles POST /api/v1/validate.
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	components, err := h.engine.ParseURL(req.URL)
	if err != nil {
		var parseErr *urlparse.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusOK, ValidateResponse{Valid: false, Reason: parseErr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:      true,
		Normalized: components.Normalized,
		URLHash:    components.URLHash,
	})
}

// GetScan handles GET /api/v1/scan/:url_hash.
func (h *Handler) GetScan(c *gin.Context) {
	urlHash := c.Param("url_hash")

	if cached := h.results.Get(c.Request.Context(), urlHash); cached != nil {
		c.JSON(http.StatusOK, ScanResponse{Result: cached, Cached: true})
		return
	}

	record, err := h.historyRepo.GetLatestByURLHash(c.Request.Context(), urlHash)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no scan recorded for url hash"})
			return
		}
		h.log.Error("scan lookup failed", logger.String("url_hash", urlHash), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scan": record})
}

// ListScans handles GET /api/v1/scans.
func (h *Handler) ListScans(c *gin.Context) {
	limit := defaultScansLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxScansLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	scans, err := h.historyRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("scan history listing failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ScansListResponse{Scans: scans, Total: len(scans)})
}

// ListPatterns handles GET /api/v1/patterns.
func (h *Handler) ListPatterns(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be a boolean"})
			return
		}
		active = &parsed
	}

	patterns, err := h.patternsRepo.List(c.Request.Context(), active)
	if err != nil {
		h.log.Error("pattern listing failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, PatternsListResponse{Patterns: patterns, Total: len(patterns)})
}

// CreatePattern handles POST /api/v1/patterns.
func (h *Handler) CreatePattern(c *gin.Context) {
	var req CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	pattern := &domain.PhishingPattern{
		Pattern:     req.Pattern,
		Severity:    req.Severity,
		TargetBrand: req.TargetBrand,
		Active:      active,
	}

	if err := h.patternsRepo.Create(c.Request.Context(), pattern); err != nil {
		h.log.Error("pattern creation failed", logger.String("pattern", req.Pattern), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshots.Invalidate()
	h.log.Info("phishing pattern created",
		logger.Int("id", pattern.ID),
		logger.String("pattern", pattern.Pattern),
		logger.String("severity", pattern.Severity))

	c.JSON(http.StatusCreated, pattern)
}

// UpdatePattern handles PUT /api/v1/patterns/:id.
func (h *Handler) UpdatePattern(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pattern id"})
		return
	}

	var req UpdatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pattern, err := h.patternsRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pattern not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Pattern != "" {
		pattern.Pattern = req.Pattern
	}
	if req.Severity != "" {
		pattern.Severity = req.Severity
	}
	if req.TargetBrand != nil {
		pattern.TargetBrand = *req.TargetBrand
	}
	if req.Active != nil {
		pattern.Active = *req.Active
	}

	if err := h.patternsRepo.Update(c.Request.Context(), pattern); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pattern not found"})
			return
		}
		h.log.Error("pattern update failed", logger.Int("id", id), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshots.Invalidate()

	c.JSON(http.StatusOK, pattern)
}

// DeletePattern handles DELETE /api/v1/patterns/:id.
func (h *Handler) DeletePattern(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pattern id"})
		return
	}

	if err := h.patternsRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pattern not found"})
			return
		}
		h.log.Error("pattern deletion failed", logger.Int("id", id), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshots.Invalidate()

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListLegitimateDomains handles GET /api/v1/legitimate.
func (h *Handler) ListLegitimateDomains(c *gin.Context) {
	domains, err := h.legitimateRepo.List(c.Request.Context())
	if err != nil {
		h.log.Error("legitimate domain listing failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"domains": domains, "total": len(domains)})
}

// CreateLegitimateDomain handles POST /api/v1/legitimate.
func (h *Handler) CreateLegitimateDomain(c *gin.Context) {
	var req CreateLegitimateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Store the registrable domain the analyzers compare against.
	components, err := h.engine.ParseURL(req.Domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain"})
		return
	}

	d := &database.LegitimateDomain{Domain: components.Domain}

	if err := h.legitimateRepo.Create(c.Request.Context(), d); err != nil {
		h.log.Error("legitimate domain creation failed", logger.String("domain", d.Domain), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshots.Invalidate()
	h.log.Info("legitimate domain added", logger.String("domain", d.Domain))

	c.JSON(http.StatusCreated, d)
}

// DeleteLegitimateDomain handles DELETE /api/v1/legitimate/:id.
func (h *Handler) DeleteLegitimateDomain(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain id"})
		return
	}

	if err := h.legitimateRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
			return
		}
		h.log.Error("legitimate domain deletion failed", logger.Int("id", id), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.snapshots.Invalidate()

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.historyRepo.Stats(c.Request.Context())
	if err != nil {
		h.log.Error("stats aggregation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "phishguard"})
}

// ReadyCheck handles GET /ready. Ready means the database answers.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// recordScan persists the scan to history. Persistence failures are
// logged and never fail the request.
func (h *Handler) recordScan(c *gin.Context, result *domain.AggregatedResult) {
	record := &domain.ScanRecord{
		URLHash:          result.URLHash,
		URL:              result.URL,
		FinalScore:       result.FinalScore,
		Classification:   result.Classification,
		Confidence:       result.Confidence,
		Flags:            collectFlags(result),
		ProcessingTimeMs: result.ProcessingTimeMs,
	}

	if err := h.historyRepo.Create(c.Request.Context(), record); err != nil {
		h.log.Warn("scan history write failed",
			logger.String("url_hash", result.URLHash),
			logger.Error(err))
	}
}

// collectFlags gathers the distinct reason codes from every component,
// sorted for stable storage.
func collectFlags(result *domain.AggregatedResult) []string {
	seen := map[string]struct{}{}
	flags := []string{}
	for _, b := range result.Components {
		for _, f := range b.Flags {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			flags = append(flags, f)
		}
	}
	sort.Strings(flags)
	return flags
}
