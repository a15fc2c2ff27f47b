// Package audit provides the PostgreSQL-backed, append-only repository for
// manifest audit entries.
package audit

import (
	"context"
	"fmt"

	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/manifest"
)

// PostgresRepository implements audit storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one audit entry.
func (r *PostgresRepository) Append(ctx context.Context, entry *manifest.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, manifest_id, action, actor, justification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ManifestID, string(entry.Action), entry.Actor, entry.Justification, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByManifest returns the dossier timeline, newest entries first.
func (r *PostgresRepository) ListByManifest(ctx context.Context, manifestID string) ([]manifest.AuditEntry, error) {
	query := `
		SELECT id, manifest_id, action, actor, justification, created_at
		FROM audit_log
		WHERE manifest_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, manifestID)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []manifest.AuditEntry
	for rows.Next() {
		var (
			item   manifest.AuditEntry
			action string
		)
		if err := rows.Scan(&item.ID, &item.ManifestID, &action, &item.Actor, &item.Justification, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Action = manifest.Action(action)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
