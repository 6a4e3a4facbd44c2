package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LegitimateDomain is a known-safe registrable domain.
type LegitimateDomain struct {
	ID        int       `db:"id"         json:"id"`
	Domain    string    `db:"domain"     json:"domain"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LegitimateDomainsRepository handles database operations for the
// known-safe domain allowlist.
type LegitimateDomainsRepository struct {
	db *sqlx.DB
}

// NewLegitimateDomainsRepository creates a new legitimate domains repository.
func NewLegitimateDomainsRepository(db *sqlx.DB) *LegitimateDomainsRepository {
	return &LegitimateDomainsRepository{db: db}
}

// Create inserts a new legitimate domain.
func (r *LegitimateDomainsRepository) Create(ctx context.Context, d *LegitimateDomain) error {
	query := `
		INSERT INTO legitimate_domains (domain)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, d.Domain).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create legitimate domain: %w", err)
	}

	return nil
}

// List retrieves all legitimate domains ordered by name.
func (r *LegitimateDomainsRepository) List(ctx context.Context) ([]LegitimateDomain, error) {
	domains := []LegitimateDomain{}
	query := `SELECT id, domain, created_at FROM legitimate_domains ORDER BY domain`

	if err := r.db.SelectContext(ctx, &domains, query); err != nil {
		return nil, fmt.Errorf("failed to list legitimate domains: %w", err)
	}

	return domains, nil
}

// AllDomains retrieves every legitimate domain name.
func (r *LegitimateDomainsRepository) AllDomains(ctx context.Context) ([]string, error) {
	domains := []string{}
	query := `SELECT domain FROM legitimate_domains ORDER BY domain`

	if err := r.db.SelectContext(ctx, &domains, query); err != nil {
		return nil, fmt.Errorf("failed to load legitimate domains: %w", err)
	}

	return domains, nil
}

// Exists reports whether domainName is in the allowlist.
func (r *LegitimateDomainsRepository) Exists(ctx context.Context, domainName string) (bool, error) {
	var found bool
	query := `SELECT EXISTS(SELECT 1 FROM legitimate_domains WHERE domain = $1)`

	err := r.db.GetContext(ctx, &found, query, domainName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check legitimate domain: %w", err)
	}

	return found, nil
}

// Delete removes a legitimate domain by ID.
func (r *LegitimateDomainsRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM legitimate_domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete legitimate domain: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("legitimate domain %d: %w", id, ErrNotFound)
	}

	return nil
}
