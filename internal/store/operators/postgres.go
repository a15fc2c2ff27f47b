// Package operators provides the PostgreSQL-backed repository for operator
// profiles and the single-active-session token.
package operators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/models"
)

// PostgresRepository implements operator storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUsername returns the operator profile, or common.ErrNotFound.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query := `
		SELECT id, username, display_name, role, salt, verifier, active_token, created_at
		FROM operators
		WHERE username = $1
	`
	op := &models.Operator{}
	var token sql.NullString
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&op.ID, &op.Username, &op.DisplayName, &op.Role, &op.Salt, &op.Verifier, &token, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	op.ActiveToken = token.String
	return op, nil
}

// SetActiveToken overwrites the operator's live session token. The store's
// trigger on this column publishes the change to subscribers, which is how
// the previously-active client learns it has been kicked out.
func (r *PostgresRepository) SetActiveToken(ctx context.Context, operatorID, token string) error {
	query := `UPDATE operators SET active_token = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, operatorID, token)
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

// ActiveToken returns the operator's currently live token.
func (r *PostgresRepository) ActiveToken(ctx context.Context, operatorID string) (string, error) {
	query := `SELECT active_token FROM operators WHERE id = $1`

	var token sql.NullString
	err := r.db.QueryRowContext(ctx, query, operatorID).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return token.String, nil
}
