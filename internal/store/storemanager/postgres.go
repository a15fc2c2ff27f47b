// Package storemanager provides the concrete Manager for PostgreSQL, wiring
// repository constructors, connection bootstrap and schema migrations
// (via goose) together.
package storemanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/store/attachments"
	"github.com/rfaguiar/manifestops/internal/store/audit"
	"github.com/rfaguiar/manifestops/internal/store/manifests"
	"github.com/rfaguiar/manifestops/internal/store/migrations"
	"github.com/rfaguiar/manifestops/internal/store/operators"
)

// PostgresManager vends PostgreSQL-backed repository implementations and
// exposes a schema migration hook.
type PostgresManager struct{}

// NewPostgresManager constructs a PostgreSQL-backed Manager.
func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

// Manifests returns a manifests.Repository bound to the provided DBTX.
func (m *PostgresManager) Manifests(db dbx.DBTX) manifests.Repository {
	return manifests.NewPostgresRepository(db)
}

// Audit returns an audit.Repository bound to the provided DBTX.
func (m *PostgresManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

// Operators returns an operators.Repository bound to the provided DBTX.
func (m *PostgresManager) Operators(db dbx.DBTX) operators.Repository {
	return operators.NewPostgresRepository(db)
}

// Attachments returns an attachments.Repository bound to the provided DBTX.
func (m *PostgresManager) Attachments(db dbx.DBTX) attachments.Repository {
	return attachments.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Open connects to the hosted store and verifies the connection with a
// bounded exponential backoff, so a dashboard started moments before the
// store finishes booting does not fail outright.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}
