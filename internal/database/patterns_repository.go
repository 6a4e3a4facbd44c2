package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/phishguard/phishguard/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PatternsRepository handles database operations for phishing patterns.
type PatternsRepository struct {
	db *sqlx.DB
}

// NewPatternsRepository creates a new patterns repository.
func NewPatternsRepository(db *sqlx.DB) *PatternsRepository {
	return &PatternsRepository{db: db}
}

// Create inserts a new phishing pattern.
func (r *PatternsRepository) Create(ctx context.Context, pattern *domain.PhishingPattern) error {
	query := `
		INSERT INTO phishing_patterns (pattern, severity, target_brand, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		pattern.Pattern,
		pattern.Severity,
		pattern.TargetBrand,
		pattern.Active,
	).Scan(&pattern.ID, &pattern.CreatedAt, &pattern.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create pattern: %w", err)
	}

	return nil
}

// GetByID retrieves a pattern by its ID.
func (r *PatternsRepository) GetByID(ctx context.Context, id int) (*domain.PhishingPattern, error) {
	var pattern domain.PhishingPattern
	query := `
		SELECT id, pattern, severity, target_brand, active, created_at, updated_at
		FROM phishing_patterns
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &pattern, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pattern %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}

	return &pattern, nil
}

// List retrieves all patterns, optionally filtered by active state.
func (r *PatternsRepository) List(ctx context.Context, active *bool) ([]domain.PhishingPattern, error) {
	patterns := []domain.PhishingPattern{}
	query := `
		SELECT id, pattern, severity, target_brand, active, created_at, updated_at
		FROM phishing_patterns
	`
	var args []any
	if active != nil {
		query += " WHERE active = $1"
		args = append(args, *active)
	}
	query += " ORDER BY id"

	if err := r.db.SelectContext(ctx, &patterns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}

	return patterns, nil
}

// Update modifies an existing pattern.
func (r *PatternsRepository) Update(ctx context.Context, pattern *domain.PhishingPattern) error {
	query := `
		UPDATE phishing_patterns
		SET pattern = $1, severity = $2, target_brand = $3, active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		pattern.Pattern,
		pattern.Severity,
		pattern.TargetBrand,
		pattern.Active,
		pattern.ID,
	).Scan(&pattern.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("pattern %d: %w", pattern.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update pattern: %w", err)
	}

	return nil
}

// Delete removes a pattern by ID.
func (r *PatternsRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM phishing_patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pattern %d: %w", id, ErrNotFound)
	}

	return nil
}

// AllActive retrieves every active pattern.
func (r *PatternsRepository) AllActive(ctx context.Context) ([]domain.PhishingPattern, error) {
	active := true
	return r.List(ctx, &active)
}

// LookupExact returns the active pattern exactly matching domainName,
// or nil when none exists. Wildcard patterns never match here.
func (r *PatternsRepository) LookupExact(ctx context.Context, domainName string) (*domain.PhishingPattern, error) {
	var pattern domain.PhishingPattern
	query := `
		SELECT id, pattern, severity, target_brand, active, created_at, updated_at
		FROM phishing_patterns
		WHERE pattern = $1 AND active = true
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &pattern, query, domainName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up pattern: %w", err)
	}

	return &pattern, nil
}
