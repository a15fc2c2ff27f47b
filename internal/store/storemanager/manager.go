package storemanager

import (
	"context"
	"database/sql"

	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/store/attachments"
	"github.com/rfaguiar/manifestops/internal/store/audit"
	"github.com/rfaguiar/manifestops/internal/store/manifests"
	"github.com/rfaguiar/manifestops/internal/store/operators"
)

// Manager vends repository implementations bound to a DBTX, so services can
// run several repositories inside one transaction via dbx.WithTx.
type Manager interface {
	Manifests(db dbx.DBTX) manifests.Repository
	Audit(db dbx.DBTX) audit.Repository
	Operators(db dbx.DBTX) operators.Repository
	Attachments(db dbx.DBTX) attachments.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
