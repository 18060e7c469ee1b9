package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/companyhub/internal/server/models"
)

// Repository defines operations for revoking tokens and checking revocation.
type Repository interface {
	// Create records the token as revoked. Revoking the same jti twice is not an error.
	Create(ctx context.Context, token *models.RevokedToken) error

	// Exists reports whether jti has been revoked.
	Exists(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes entries whose token would have expired by now
	// anyway and returns how many rows were purged.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
