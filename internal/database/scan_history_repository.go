package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/phishguard/phishguard/internal/domain"
)

// ScanStats summarizes recorded scans.
type ScanStats struct {
	TotalScans          int            `json:"total_scans"`
	AvgFinalScore       float64        `json:"avg_final_score"`
	AvgProcessingTimeMs float64        `json:"avg_processing_time_ms"`
	Classifications     map[string]int `json:"classifications"`
}

// ScanHistoryRepository handles database operations for scan history.
type ScanHistoryRepository struct {
	db *sqlx.DB
}

// NewScanHistoryRepository creates a new scan history repository.
func NewScanHistoryRepository(db *sqlx.DB) *ScanHistoryRepository {
	return &ScanHistoryRepository{db: db}
}

// Create inserts a scan record, assigning it a UUID.
func (r *ScanHistoryRepository) Create(ctx context.Context, record *domain.ScanRecord) error {
	record.ID = uuid.New().String()

	query := `
		INSERT INTO scan_history (
			id, url_hash, url, final_score, classification, confidence,
			flags, processing_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING scanned_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.ID,
		record.URLHash,
		record.URL,
		record.FinalScore,
		record.Classification,
		record.Confidence,
		pq.Array(record.Flags),
		record.ProcessingTimeMs,
	).Scan(&record.ScannedAt)

	if err != nil {
		return fmt.Errorf("failed to create scan record: %w", err)
	}

	return nil
}

// GetLatestByURLHash retrieves the most recent scan for a URL hash.
func (r *ScanHistoryRepository) GetLatestByURLHash(ctx context.Context, urlHash string) (*domain.ScanRecord, error) {
	var record domain.ScanRecord
	query := `
		SELECT id, url_hash, url, final_score, classification, confidence,
		       flags, processing_time_ms, scanned_at
		FROM scan_history
		WHERE url_hash = $1
		ORDER BY scanned_at DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, urlHash).Scan(
		&record.ID,
		&record.URLHash,
		&record.URL,
		&record.FinalScore,
		&record.Classification,
		&record.Confidence,
		pq.Array(&record.Flags),
		&record.ProcessingTimeMs,
		&record.ScannedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scan %s: %w", urlHash, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get scan record: %w", err)
	}

	return &record, nil
}

// ListRecent retrieves the most recent scans, newest first.
func (r *ScanHistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	query := `
		SELECT id, url_hash, url, final_score, classification, confidence,
		       flags, processing_time_ms, scanned_at
		FROM scan_history
		ORDER BY scanned_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan records: %w", err)
	}
	defer rows.Close()

	records := []domain.ScanRecord{}
	for rows.Next() {
		var record domain.ScanRecord
		if scanErr := rows.Scan(
			&record.ID,
			&record.URLHash,
			&record.URL,
			&record.FinalScore,
			&record.Classification,
			&record.Confidence,
			pq.Array(&record.Flags),
			&record.ProcessingTimeMs,
			&record.ScannedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scan records: %w", err)
	}

	return records, nil
}

// Stats aggregates totals, averages, and per-classification counts.
func (r *ScanHistoryRepository) Stats(ctx context.Context) (*ScanStats, error) {
	stats := &ScanStats{Classifications: map[string]int{}}

	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(final_score), 0),
		       COALESCE(AVG(processing_time_ms), 0)
		FROM scan_history
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalScans,
		&stats.AvgFinalScore,
		&stats.AvgProcessingTimeMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scan stats: %w", err)
	}

	byClass := `
		SELECT classification, COUNT(*) AS count
		FROM scan_history
		GROUP BY classification
	`
	rows, err := r.db.QueryContext(ctx, byClass)
	if err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var classification string
		var count int
		if scanErr := rows.Scan(&classification, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan classification count: %w", scanErr)
		}
		stats.Classifications[classification] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read classification counts: %w", err)
	}

	return stats, nil
}
