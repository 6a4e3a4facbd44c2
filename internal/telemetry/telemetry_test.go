package telemetry

import (
	"testing"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
)

// Analyzers and the cache record metrics through a possibly-nil provider;
// every recorder must be a no-op on nil.
func TestProvider_NilSafety(t *testing.T) {
	var p *Provider

	p.RecordScan(domain.ClassificationSafe, time.Millisecond)
	p.RecordAnalyzer(domain.ComponentDomain, time.Millisecond)
	p.RecordPatternSkipped()
	p.RecordCacheLookup(true)
	p.RecordCacheLookup(false)
	p.RecordBatch(10)
}

func TestNewProvider(t *testing.T) {
	p := NewProvider()
	if p.Tracer == nil {
		t.Error("Tracer is nil")
	}
	if p.Metrics == nil {
		t.Fatal("Metrics is nil")
	}

	// Multiple providers share the same registered metric set.
	q := NewProvider()
	if q.Metrics != p.Metrics {
		t.Error("NewProvider() registered a second metric set")
	}

	p.RecordScan(domain.ClassificationDangerous, 5*time.Millisecond)
	p.RecordAnalyzer(domain.ComponentPath, time.Millisecond)
	p.RecordBatch(3)

	if p.Handler() == nil {
		t.Error("Handler() is nil")
	}
}
