package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/companyhub/internal/dbx"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/companies"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// run the same repository code against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Companies(db dbx.DBTX) companies.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
