// Package users declares the credential store: persistence of user accounts
// and of each user's active company pointer.
package users

import (
	"context"

	"github.com/dmitrijs2005/companyhub/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its ID and timestamps. A taken email
	// (case-insensitive) yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetActiveCompanyIfNone points the user at companyID only when no company
	// is currently active.
	SetActiveCompanyIfNone(ctx context.Context, userID, companyID string) error
	SetActiveCompany(ctx context.Context, userID, companyID string) error
	// ClearActiveCompanyIf resets the pointer only if it still equals companyID.
	ClearActiveCompanyIf(ctx context.Context, userID, companyID string) error
}
