// Package companies persists company records. Every single-row operation is
// scoped to the owning user: a company that exists but belongs to someone
// else is reported exactly like a missing one.
package companies

import (
	"context"

	"github.com/dmitrijs2005/companyhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Company, error)
	GetOwned(ctx context.Context, userID, id string) (*models.Company, error)
	Update(ctx context.Context, userID, id string, patch models.CompanyPatch) (*models.Company, error)
	DeleteOwned(ctx context.Context, userID, id string) error
	// GetActive returns the company the user has selected, or
	// common.ErrNoActiveCompany.
	GetActive(ctx context.Context, userID string) (*models.Company, error)
}
