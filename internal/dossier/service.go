// Package dossier assembles the read side of a single manifest: current
// state, service-rule evaluation, audit timeline and attachments.
package dossier

import (
	"context"
	"database/sql"

	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/models"
	"github.com/rfaguiar/manifestops/internal/sla"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

// Dossier is the full drill-down view of one manifest.
type Dossier struct {
	Manifest        manifest.Manifest
	Results         []sla.Result
	OrderViolations []string
	Timeline        []manifest.AuditEntry // newest first
	Attachments     []models.Attachment
}

type Service struct {
	db      *sql.DB
	manager storemanager.Manager
	logger  logging.Logger
}

func NewService(db *sql.DB, manager storemanager.Manager, logger logging.Logger) *Service {
	return &Service{
		db:      db,
		manager: manager,
		logger:  logger.With("module", "dossier"),
	}
}

// Get loads the dossier for one manifest id. Reads run outside any
// transaction; the view is assembled best-effort from three queries.
func (s *Service) Get(ctx context.Context, id string) (*Dossier, error) {
	m, err := s.manager.Manifests(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	timeline, err := s.manager.Audit(s.db).ListByManifest(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := s.manager.Attachments(s.db).ListByManifest(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Dossier{
		Manifest:        *m,
		Results:         sla.Evaluate(m),
		OrderViolations: m.OrderViolations(),
		Timeline:        timeline,
		Attachments:     files,
	}, nil
}
