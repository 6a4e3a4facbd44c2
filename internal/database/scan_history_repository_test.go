package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/phishguard/phishguard/internal/database"
	"github.com/phishguard/phishguard/internal/domain"
)

const testURLHash = "a3f1c2d4e5f60718293a4b5c6d7e8f901a2b3c4d5e6f708192a3b4c5d6e7f809"

func scanColumns() []string {
	return []string{
		"id", "url_hash", "url", "final_score", "classification", "confidence",
		"flags", "processing_time_ms", "scanned_at",
	}
}

func TestScanHistoryRepository_Create(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := database.NewScanHistoryRepository(sqlxDB)
	ctx := context.Background()

	testCases := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successfully creates record",
			setupMock: func() {
				rows := sqlmock.NewRows([]string{"scanned_at"}).AddRow(time.Now())
				mock.ExpectQuery("INSERT INTO scan_history").
					WillReturnRows(rows)
			},
		},
		{
			name: "returns error on database failure",
			setupMock: func() {
				mock.ExpectQuery("INSERT INTO scan_history").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			record := &domain.ScanRecord{
				URLHash:          testURLHash,
				URL:              "http://paypa1-secure-login.tk/verify/account",
				FinalScore:       0.6007,
				Classification:   domain.ClassificationDangerous,
				Confidence:       domain.ConfidenceMedium,
				Flags:            []string{domain.FlagSuspiciousTLD, domain.FlagPlainHTTP},
				ProcessingTimeMs: 4,
			}
			callErr := repo.Create(ctx, record)
			if (callErr != nil) != tc.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", callErr, tc.wantErr)
			}
			if !tc.wantErr {
				if record.ID == "" {
					t.Error("Create() did not assign an ID")
				}
				if record.ScannedAt.IsZero() {
					t.Error("Create() did not populate ScannedAt")
				}
			}

			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}

func TestScanHistoryRepository_GetLatestByURLHash(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := database.NewScanHistoryRepository(sqlxDB)
	ctx := context.Background()

	testCases := []struct {
		name         string
		setupMock    func()
		wantErr      bool
		wantNotFound bool
	}{
		{
			name: "returns latest record",
			setupMock: func() {
				rows := sqlmock.NewRows(scanColumns()).
					AddRow("rec-1", testURLHash, "https://example.com", 0.0,
						"safe", "high", "{}", 2, time.Now())
				mock.ExpectQuery("SELECT (.+) FROM scan_history").
					WithArgs(testURLHash).
					WillReturnRows(rows)
			},
		},
		{
			name: "returns ErrNotFound when never scanned",
			setupMock: func() {
				mock.ExpectQuery("SELECT (.+) FROM scan_history").
					WithArgs(testURLHash).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr:      true,
			wantNotFound: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			record, callErr := repo.GetLatestByURLHash(ctx, testURLHash)
			if (callErr != nil) != tc.wantErr {
				t.Errorf("GetLatestByURLHash() error = %v, wantErr %v", callErr, tc.wantErr)
			}
			if tc.wantNotFound && !errors.Is(callErr, database.ErrNotFound) {
				t.Errorf("GetLatestByURLHash() error = %v, want ErrNotFound", callErr)
			}
			if !tc.wantErr && record.URLHash != testURLHash {
				t.Errorf("GetLatestByURLHash() URLHash = %q, want %q", record.URLHash, testURLHash)
			}

			if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
				t.Errorf("unfulfilled expectations: %v", expectErr)
			}
		})
	}
}

func TestScanHistoryRepository_ListRecent(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := database.NewScanHistoryRepository(sqlxDB)
	ctx := context.Background()

	rows := sqlmock.NewRows(scanColumns()).
		AddRow("rec-2", testURLHash, "https://example.com", 0.36,
			"suspicious", "low", `{"suspicious_tld"}`, 3, time.Now()).
		AddRow("rec-1", testURLHash, "https://example.com", 0.0,
			"safe", "high", "{}", 2, time.Now().Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM scan_history").
		WithArgs(50).
		WillReturnRows(rows)

	records, err := repo.ListRecent(ctx, 50)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRecent() returned %d records, want 2", len(records))
	}
	if records[0].ID != "rec-2" {
		t.Errorf("ListRecent() first record = %s, want newest first", records[0].ID)
	}
	if len(records[0].Flags) != 1 || records[0].Flags[0] != "suspicious_tld" {
		t.Errorf("ListRecent() flags = %v, want [suspicious_tld]", records[0].Flags)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}

func TestScanHistoryRepository_Stats(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := database.NewScanHistoryRepository(sqlxDB)
	ctx := context.Background()

	totals := sqlmock.NewRows([]string{"count", "avg_final_score", "avg_processing_time_ms"}).
		AddRow(10, 0.42, 3.5)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(totals)

	byClass := sqlmock.NewRows([]string{"classification", "count"}).
		AddRow("safe", 6).
		AddRow("suspicious", 3).
		AddRow("dangerous", 1)
	mock.ExpectQuery("SELECT classification").WillReturnRows(byClass)

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalScans != 10 {
		t.Errorf("TotalScans = %d, want 10", stats.TotalScans)
	}
	if stats.AvgFinalScore != 0.42 {
		t.Errorf("AvgFinalScore = %v, want 0.42", stats.AvgFinalScore)
	}
	if stats.Classifications["dangerous"] != 1 {
		t.Errorf("Classifications = %v, want dangerous=1", stats.Classifications)
	}

	if expectErr := mock.ExpectationsWereMet(); expectErr != nil {
		t.Errorf("unfulfilled expectations: %v", expectErr)
	}
}
