package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/dbx"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
)

// PostgresRepository implements company storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(s scanner) (*models.Company, error) {
	c := &models.Company{}
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Address, &c.Industry, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts company owned by company.UserID and fills in its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	query := `
		INSERT INTO companies (user_id, name, address, industry)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, company.UserID, company.Name, company.Address, company.Industry).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return company, nil
}

// ListByOwner returns all companies of userID, oldest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Company, error) {
	query := `
		SELECT id, user_id, name, address, industry, created_at, updated_at
		FROM companies
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetOwned returns the company with id if it belongs to userID,
// otherwise common.ErrorNotFound.
func (r *PostgresRepository) GetOwned(ctx context.Context, userID, id string) (*models.Company, error) {
	query := `
		SELECT id, user_id, name, address, industry, created_at, updated_at
		FROM companies
		WHERE id = $1 AND user_id = $2
	`
	c, err := scanCompany(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Update applies patch to an owned company and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.CompanyPatch) (*models.Company, error) {
	query := `
		UPDATE companies SET
			name = COALESCE($3, name),
			address = CASE WHEN $4 THEN $5 ELSE address END,
			industry = CASE WHEN $6 THEN $7 ELSE industry END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, address, industry, created_at, updated_at
	`
	c, err := scanCompany(r.db.QueryRowContext(ctx, query,
		id, userID, patch.Name, patch.SetAddress, patch.Address, patch.SetIndustry, patch.Industry))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// DeleteOwned removes an owned company. Deleting a company that is missing or
// foreign returns common.ErrorNotFound.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM companies
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetActive(ctx context.Context, userID string) (*models.Company, error) {
	query := `
		SELECT c.id, c.user_id, c.name, c.address, c.industry, c.created_at, c.updated_at
		FROM users u
		JOIN companies c ON c.id = u.active_company_id AND c.user_id = u.id
		WHERE u.id = $1
	`
	c, err := scanCompany(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNoActiveCompany
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
