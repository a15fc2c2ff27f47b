package manifests

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/manifest"
)

type Repository interface {
	// ListRecent returns up to limit manifests, most recent first.
	ListRecent(ctx context.Context, limit int) ([]manifest.Manifest, error)
	Get(ctx context.Context, id string) (*manifest.Manifest, error)
	Insert(ctx context.Context, m *manifest.Manifest) error
	Update(ctx context.Context, m *manifest.Manifest) error
	// LatestIDForPrefix returns the highest manifest id with the given
	// prefix (e.g. "MAO-24"), or common.ErrNotFound when none exists.
	LatestIDForPrefix(ctx context.Context, prefix string) (string, error)
}
