package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/dbx"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CompanyInput carries the fields of a new company.
type CompanyInput struct {
	Name     string
	Address  *string
	Industry *string
}

// CompanyService manages companies on behalf of their owner. Every method
// takes the authenticated user id; a company id that does not belong to that
// user is reported as common.ErrorNotFound.
type CompanyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCompanyService(db *sql.DB, m repomanager.RepositoryManager) *CompanyService {
	return &CompanyService{
		db:          db,
		repomanager: m,
	}
}

// owned is the single ownership guard used by every id-targeted operation.
func (s *CompanyService) owned(ctx context.Context, db dbx.DBTX, userID, companyID string) (*models.Company, error) {
	if uuid.Validate(companyID) != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Companies(db).GetOwned(ctx, userID, companyID)
}

func (s *CompanyService) List(ctx context.Context, userID string) ([]*models.Company, error) {
	list, err := s.repomanager.Companies(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing companies: %w", err)
	}
	return list, nil
}

// Create stores a company owned by userID. The first company a user creates
// becomes the active one.
func (s *CompanyService) Create(ctx context.Context, userID string, in CompanyInput) (*models.Company, error) {
	var company *models.Company

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		company, err = s.repomanager.Companies(tx).Create(ctx, &models.Company{
			UserID:   userID,
			Name:     in.Name,
			Address:  in.Address,
			Industry: in.Industry,
		})
		if err != nil {
			return fmt.Errorf("error creating company: %w", err)
		}

		if err := s.repomanager.Users(tx).SetActiveCompanyIfNone(ctx, userID, company.ID); err != nil {
			return fmt.Errorf("error setting active company: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, userID, companyID string) (*models.Company, error) {
	return s.owned(ctx, s.db, userID, companyID)
}

func (s *CompanyService) Update(ctx context.Context, userID, companyID string, patch models.CompanyPatch) (*models.Company, error) {
	var company *models.Company

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.owned(ctx, tx, userID, companyID); err != nil {
			return err
		}

		var err error
		company, err = s.repomanager.Companies(tx).Update(ctx, userID, companyID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	return company, nil
}

// Delete removes an owned company and clears the user's active pointer if it
// referenced that company.
func (s *CompanyService) Delete(ctx context.Context, userID, companyID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.owned(ctx, tx, userID, companyID); err != nil {
			return err
		}

		if err := s.repomanager.Companies(tx).DeleteOwned(ctx, userID, companyID); err != nil {
			return err
		}

		if err := s.repomanager.Users(tx).ClearActiveCompanyIf(ctx, userID, companyID); err != nil {
			return fmt.Errorf("error clearing active company: %w", err)
		}
		return nil
	})
}

// SetActive makes an owned company the user's active one. A foreign or
// missing company leaves the pointer untouched.
func (s *CompanyService) SetActive(ctx context.Context, userID, companyID string) (*models.Company, error) {
	var company *models.Company

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		company, err = s.owned(ctx, tx, userID, companyID)
		if err != nil {
			return err
		}

		if err := s.repomanager.Users(tx).SetActiveCompany(ctx, userID, companyID); err != nil {
			return fmt.Errorf("error setting active company: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return company, nil
}

// Current returns the active company or common.ErrNoActiveCompany.
func (s *CompanyService) Current(ctx context.Context, userID string) (*models.Company, error) {
	return s.repomanager.Companies(s.db).GetActive(ctx, userID)
}
