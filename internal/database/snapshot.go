package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/logger"
)

// Snapshot is an immutable in-memory view of the legitimate-domain
// allowlist and active phishing patterns. Lookups never touch the
// database, so the five analyzers can read it in parallel.
type Snapshot struct {
	legitimate map[string]struct{}
	legitList  []string
	exact      map[string]domain.PhishingPattern
	patterns   []domain.PhishingPattern
	loadedAt   time.Time
}

// LookupLegitimate reports whether domainName is in the known-safe set.
func (s *Snapshot) LookupLegitimate(_ context.Context, domainName string) (bool, error) {
	_, ok := s.legitimate[domainName]
	return ok, nil
}

// AllLegitimateDomains returns every known-safe domain.
func (s *Snapshot) AllLegitimateDomains(_ context.Context) ([]string, error) {
	return s.legitList, nil
}

// LookupExactPhishing returns the active pattern exactly matching
// domainName, or nil when none exists.
func (s *Snapshot) LookupExactPhishing(_ context.Context, domainName string) (*domain.PhishingPattern, error) {
	if p, ok := s.exact[domainName]; ok {
		return &p, nil
	}
	return nil, nil
}

// AllActivePatterns returns every active phishing pattern.
func (s *Snapshot) AllActivePatterns(_ context.Context) ([]domain.PhishingPattern, error) {
	return s.patterns, nil
}

// LoadedAt reports when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// SnapshotProvider builds pattern snapshots from the database and
// refreshes them when they exceed the configured TTL.
type SnapshotProvider struct {
	patterns   *PatternsRepository
	legitimate *LegitimateDomainsRepository
	ttl        time.Duration
	log        logger.Logger

	mu      sync.RWMutex
	current *Snapshot
}

// NewSnapshotProvider creates a snapshot provider over the two
// lookup repositories.
func NewSnapshotProvider(
	patterns *PatternsRepository,
	legitimate *LegitimateDomainsRepository,
	ttl time.Duration,
	log logger.Logger,
) *SnapshotProvider {
	return &SnapshotProvider{
		patterns:   patterns,
		legitimate: legitimate,
		ttl:        ttl,
		log:        log,
	}
}

// Current returns a fresh-enough snapshot, rebuilding it from the
// database when the TTL has expired. A stale snapshot is served when
// the rebuild fails and a previous snapshot exists.
func (p *SnapshotProvider) Current(ctx context.Context) (*Snapshot, error) {
	p.mu.RLock()
	snap := p.current
	p.mu.RUnlock()

	if snap != nil && time.Since(snap.loadedAt) < p.ttl {
		return snap, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if p.current != nil && time.Since(p.current.loadedAt) < p.ttl {
		return p.current, nil
	}

	fresh, err := p.build(ctx)
	if err != nil {
		if p.current != nil {
			p.log.Warn("pattern snapshot refresh failed, serving stale snapshot",
				logger.Error(err),
				logger.Duration("age", time.Since(p.current.loadedAt)))
			return p.current, nil
		}
		return nil, fmt.Errorf("failed to build pattern snapshot: %w", err)
	}

	p.current = fresh
	p.log.Info("pattern snapshot refreshed",
		logger.Int("legitimate_domains", len(fresh.legitList)),
		logger.Int("active_patterns", len(fresh.patterns)))

	return fresh, nil
}

// Invalidate drops the cached snapshot so the next Current call
// rebuilds it. Called after pattern or allowlist mutations.
func (p *SnapshotProvider) Invalidate() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

func (p *SnapshotProvider) build(ctx context.Context) (*Snapshot, error) {
	legitList, err := p.legitimate.AllDomains(ctx)
	if err != nil {
		return nil, err
	}

	patterns, err := p.patterns.AllActive(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		legitimate: make(map[string]struct{}, len(legitList)),
		legitList:  legitList,
		exact:      make(map[string]domain.PhishingPattern, len(patterns)),
		patterns:   patterns,
		loadedAt:   time.Now(),
	}
	for _, d := range legitList {
		snap.legitimate[d] = struct{}{}
	}
	for _, pat := range patterns {
		snap.exact[pat.Pattern] = pat
	}

	return snap, nil
}
