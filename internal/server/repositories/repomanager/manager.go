// Package repomanager wires repository constructors together behind a single
// interface, so services can obtain repositories bound either to the shared
// *sql.DB or to an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkravtsov/shelfmark/internal/dbx"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/items"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/refreshtokens"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/sharedlinks"
	"github.com/dkravtsov/shelfmark/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to the provided DBTX and exposes
// a schema migration hook.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Items(db dbx.DBTX) items.Repository
	SharedLinks(db dbx.DBTX) sharedlinks.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
