package attachments

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.Attachment) error
	ListByManifest(ctx context.Context, manifestID string) ([]models.Attachment, error)
}
