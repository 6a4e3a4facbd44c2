// Package testhelpers provides shared test utilities for the phishguard service.
package testhelpers

import (
	"context"
	"sync"

	"github.com/phishguard/phishguard/internal/domain"
)

// MockPatternRepository implements domain.PatternRepository in memory.
type MockPatternRepository struct {
	mu         sync.RWMutex
	legitimate map[string]struct{}
	patterns   []domain.PhishingPattern

	// Err, when set, is returned by every lookup. Used to exercise
	// repository failure paths.
	Err error
}

// NewMockPatternRepository creates an empty mock repository.
func NewMockPatternRepository() *MockPatternRepository {
	return &MockPatternRepository{
		legitimate: make(map[string]struct{}),
	}
}

// AddLegitimate adds domains to the known-safe set.
func (m *MockPatternRepository) AddLegitimate(domains ...string) *MockPatternRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range domains {
		m.legitimate[d] = struct{}{}
	}
	return m
}

// AddPattern adds a phishing pattern.
func (m *MockPatternRepository) AddPattern(pattern domain.PhishingPattern) *MockPatternRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pattern.ID == 0 {
		pattern.ID = len(m.patterns) + 1
	}
	m.patterns = append(m.patterns, pattern)
	return m
}

// LookupLegitimate reports whether domainName is in the known-safe set.
func (m *MockPatternRepository) LookupLegitimate(_ context.Context, domainName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.legitimate[domainName]
	return ok, nil
}

// AllLegitimateDomains returns every known-safe domain.
func (m *MockPatternRepository) AllLegitimateDomains(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	domains := make([]string, 0, len(m.legitimate))
	for d := range m.legitimate {
		domains = append(domains, d)
	}
	return domains, nil
}

// LookupExactPhishing returns the active pattern exactly matching
// domainName, or nil when none exists.
func (m *MockPatternRepository) LookupExactPhishing(_ context.Context, domainName string) (*domain.PhishingPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.patterns {
		if m.patterns[i].Active && m.patterns[i].Pattern == domainName {
			p := m.patterns[i]
			return &p, nil
		}
	}
	return nil, nil
}

// AllActivePatterns returns every active phishing pattern.
func (m *MockPatternRepository) AllActivePatterns(_ context.Context) ([]domain.PhishingPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	active := []domain.PhishingPattern{}
	for _, p := range m.patterns {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}
