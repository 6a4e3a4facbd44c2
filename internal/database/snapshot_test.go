package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/phishguard/phishguard/internal/database"
	"github.com/phishguard/phishguard/internal/logger"
)

func expectSnapshotBuild(mock sqlmock.Sqlmock, domains []string, patterns [][]driver.Value) {
	legitRows := sqlmock.NewRows([]string{"domain"})
	for _, d := range domains {
		legitRows.AddRow(d)
	}
	mock.ExpectQuery("SELECT domain FROM legitimate_domains").WillReturnRows(legitRows)

	patternRows := sqlmock.NewRows(patternColumns())
	for _, p := range patterns {
		patternRows.AddRow(p...)
	}
	mock.ExpectQuery("SELECT (.+) FROM phishing_patterns").
		WithArgs(true).
		WillReturnRows(patternRows)
}

func newSnapshotProvider(t *testing.T, ttl time.Duration) (*database.SnapshotProvider, sqlmock.Sqlmock) {
	t.Helper()

	sqlxDB, mock := newMockDB(t)
	provider := database.NewSnapshotProvider(
		database.NewPatternsRepository(sqlxDB),
		database.NewLegitimateDomainsRepository(sqlxDB),
		ttl,
		logger.NewNop(),
	)
	return provider, mock
}

func TestSnapshotProvider_BuildsAndCaches(t *testing.T) {
	provider, mock := newSnapshotProvider(t, time.Minute)
	ctx := context.Background()
	now := time.Now()

	expectSnapshotBuild(mock,
		[]string{"bit.ly", "google.com", "paypal.com"},
		[][]driver.Value{
			{1, "paypal-login.tk", "high", "paypal", true, now, now},
		},
	)

	snap, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	ok, _ := snap.LookupLegitimate(ctx, "paypal.com")
	if !ok {
		t.Error("LookupLegitimate(paypal.com) = false, want true")
	}
	ok, _ = snap.LookupLegitimate(ctx, "attacker.tk")
	if ok {
		t.Error("LookupLegitimate(attacker.tk) = true, want false")
	}

	pattern, _ := snap.LookupExactPhishing(ctx, "paypal-login.tk")
	if pattern == nil || pattern.ID != 1 {
		t.Errorf("LookupExactPhishing() = %+v, want pattern 1", pattern)
	}
	missing, _ := snap.LookupExactPhishing(ctx, "unknown.tk")
	if missing != nil {
		t.Errorf("LookupExactPhishing(unknown) = %+v, want nil", missing)
	}

	domains, _ := snap.AllLegitimateDomains(ctx)
	if len(domains) != 3 {
		t.Errorf("AllLegitimateDomains() returned %d, want 3", len(domains))
	}

	// Within the TTL the same snapshot is served without touching the
	// database; sqlmock would reject an unexpected query.
	again, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() second call error = %v", err)
	}
	if again != snap {
		t.Error("Current() rebuilt inside the TTL")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestSnapshotProvider_InvalidateForcesRebuild(t *testing.T) {
	provider, mock := newSnapshotProvider(t, time.Minute)
	ctx := context.Background()

	expectSnapshotBuild(mock, []string{"google.com"}, nil)
	first, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	provider.Invalidate()

	expectSnapshotBuild(mock, []string{"google.com", "paypal.com"}, nil)
	second, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() after Invalidate error = %v", err)
	}
	if second == first {
		t.Error("Current() served the invalidated snapshot")
	}

	domains, _ := second.AllLegitimateDomains(ctx)
	if len(domains) != 2 {
		t.Errorf("rebuilt snapshot has %d domains, want 2", len(domains))
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestSnapshotProvider_ServesStaleOnRebuildFailure(t *testing.T) {
	// Zero TTL forces a rebuild attempt on every call.
	provider, mock := newSnapshotProvider(t, 0)
	ctx := context.Background()

	expectSnapshotBuild(mock, []string{"google.com"}, nil)
	first, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	mock.ExpectQuery("SELECT domain FROM legitimate_domains").
		WillReturnError(sql.ErrConnDone)

	stale, err := provider.Current(ctx)
	if err != nil {
		t.Fatalf("Current() must serve stale on rebuild failure, got error %v", err)
	}
	if stale != first {
		t.Error("Current() did not serve the previous snapshot")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestSnapshotProvider_ErrorWithoutPriorSnapshot(t *testing.T) {
	provider, mock := newSnapshotProvider(t, time.Minute)

	mock.ExpectQuery("SELECT domain FROM legitimate_domains").
		WillReturnError(sql.ErrConnDone)

	if _, err := provider.Current(context.Background()); err == nil {
		t.Fatal("Current() error = nil with no prior snapshot and a failing database")
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
