// Package attachments provides the PostgreSQL-backed repository for dossier
// attachment references.
package attachments

import (
	"context"
	"fmt"

	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/models"
)

// PostgresRepository implements attachment storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores one attachment reference.
func (r *PostgresRepository) Insert(ctx context.Context, a *models.Attachment) error {
	query := `
		INSERT INTO attachments (id, manifest_id, file_name, storage_key, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.ManifestID, a.FileName, a.StorageKey, a.UploadedBy, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByManifest returns the manifest's attachments, newest first.
func (r *PostgresRepository) ListByManifest(ctx context.Context, manifestID string) ([]models.Attachment, error) {
	query := `
		SELECT id, manifest_id, file_name, storage_key, uploaded_by, created_at
		FROM attachments
		WHERE manifest_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, manifestID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []models.Attachment
	for rows.Next() {
		var item models.Attachment
		if err := rows.Scan(&item.ID, &item.ManifestID, &item.FileName, &item.StorageKey, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
