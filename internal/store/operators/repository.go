package operators

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/models"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	// SetActiveToken overwrites the operator's single live session token.
	SetActiveToken(ctx context.Context, operatorID, token string) error
	// ActiveToken returns the currently live token for the operator.
	ActiveToken(ctx context.Context, operatorID string) (string, error)
}
