package audit

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/manifest"
)

type Repository interface {
	// Append inserts one audit entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *manifest.AuditEntry) error
	// ListByManifest returns the manifest's entries, newest first.
	ListByManifest(ctx context.Context, manifestID string) ([]manifest.AuditEntry, error)
}
