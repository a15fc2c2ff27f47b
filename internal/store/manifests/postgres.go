// Package manifests provides the PostgreSQL-backed repository for manifest
// rows. Lifecycle instants are stored as the raw strings the store receives
// (operator-typed local format or machine timestamps) and normalized on
// read, so every view decodes them identically.
package manifests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/timeparse"
)

// PostgresRepository implements manifest storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const manifestColumns = `id, carrier, shift, status,
	pulled_at, received_at, started_at, completed_at, signed_at, delivered_at,
	registered_by, assigned_to, last_action_by, updated_at`

func scanManifest(scan func(dest ...any) error) (*manifest.Manifest, error) {
	var (
		m      manifest.Manifest
		status string
		raw    [6]sql.NullString
	)

	err := scan(
		&m.ID, &m.Carrier, &m.Shift, &status,
		&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5],
		&m.RegisteredBy, &m.AssignedTo, &m.LastActionBy, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Status = manifest.Status(status)
	m.PulledAt = timeparse.Normalize(raw[0].String)
	m.ReceivedAt = timeparse.Normalize(raw[1].String)
	m.StartedAt = timeparse.Normalize(raw[2].String)
	m.CompletedAt = timeparse.Normalize(raw[3].String)
	m.SignedAt = timeparse.Normalize(raw[4].String)
	m.DeliveredAt = timeparse.Normalize(raw[5].String)

	return &m, nil
}

// ListRecent returns up to limit manifests ordered most recent first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]manifest.Manifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM manifests
		ORDER BY id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select manifests: %w", err)
	}
	defer rows.Close()

	var result []manifest.Manifest
	for rows.Next() {
		m, err := scanManifest(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns one manifest by id, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*manifest.Manifest, error) {
	query := `SELECT ` + manifestColumns + ` FROM manifests WHERE id = $1`

	m, err := scanManifest(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Insert stores a newly registered manifest.
func (r *PostgresRepository) Insert(ctx context.Context, m *manifest.Manifest) error {
	query := `
		INSERT INTO manifests (` + manifestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Carrier, m.Shift, string(m.Status),
		timeparse.FormatFull(m.PulledAt), timeparse.FormatFull(m.ReceivedAt),
		timeparse.FormatFull(m.StartedAt), timeparse.FormatFull(m.CompletedAt),
		timeparse.FormatFull(m.SignedAt), timeparse.FormatFull(m.DeliveredAt),
		m.RegisteredBy, m.AssignedTo, m.LastActionBy, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing manifest by key.
func (r *PostgresRepository) Update(ctx context.Context, m *manifest.Manifest) error {
	query := `
		UPDATE manifests SET
			carrier = $2, shift = $3, status = $4,
			pulled_at = $5, received_at = $6, started_at = $7,
			completed_at = $8, signed_at = $9, delivered_at = $10,
			assigned_to = $11, last_action_by = $12, updated_at = $13
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		m.ID, m.Carrier, m.Shift, string(m.Status),
		timeparse.FormatFull(m.PulledAt), timeparse.FormatFull(m.ReceivedAt),
		timeparse.FormatFull(m.StartedAt), timeparse.FormatFull(m.CompletedAt),
		timeparse.FormatFull(m.SignedAt), timeparse.FormatFull(m.DeliveredAt),
		m.AssignedTo, m.LastActionBy, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// LatestIDForPrefix returns the highest id with the given prefix. The
// sequential suffix is zero-padded, so lexicographic order matches numeric
// order and MAX(id) is the latest.
func (r *PostgresRepository) LatestIDForPrefix(ctx context.Context, prefix string) (string, error) {
	query := `SELECT id FROM manifests WHERE id LIKE $1 ORDER BY id DESC LIMIT 1`

	var id string
	err := r.db.QueryRowContext(ctx, query, prefix+"%").Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
