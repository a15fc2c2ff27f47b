// Package registry orchestrates manifest operations against the hosted
// store: id allocation, the pure lifecycle transitions, and the audit entry
// each transition must leave behind. A transition and its audit entry are
// written in one transaction; validation failures abort before any write.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/session"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

// Service performs manifest operations on behalf of a logged-in operator.
type Service struct {
	db      *sql.DB
	manager storemanager.Manager
	logger  logging.Logger

	// now is a seam for tests.
	now func() time.Time
}

// NewService constructs a registry Service.
func NewService(db *sql.DB, manager storemanager.Manager, logger logging.Logger) *Service {
	return &Service{
		db:      db,
		manager: manager,
		logger:  logger.With("module", "registry"),
		now:     time.Now,
	}
}

// nextID computes the next sequential manifest id for the current year:
// read the latest id matching the year prefix, increment the numeric
// suffix, zero-pad to seven digits.
func (s *Service) nextID(ctx context.Context, db dbx.DBTX, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s%02d", common.ManifestIDPrefix, now.Year()%100)

	latest, err := s.manager.Manifests(db).LatestIDForPrefix(ctx, prefix)
	seq := 1
	switch {
	case err == nil:
		suffix := strings.TrimPrefix(latest, prefix)
		n, convErr := strconv.Atoi(suffix)
		if convErr != nil {
			return "", fmt.Errorf("malformed manifest id %q: %w", latest, convErr)
		}
		seq = n + 1
	case errors.Is(err, common.ErrNotFound):
		// First manifest of the year.
	default:
		return "", err
	}

	return fmt.Sprintf("%s%0*d", prefix, common.ManifestIDSuffixDigits, seq), nil
}

// Register validates a registration, allocates the next id and stores the
// new manifest together with its audit entry.
func (s *Service) Register(ctx context.Context, sess *session.Session, reg manifest.Registration) (*manifest.Manifest, error) {
	now := s.now()

	var created *manifest.Manifest
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.nextID(ctx, tx, now)
		if err != nil {
			return err
		}

		m, err := manifest.NewFromRegistration(id, reg, sess.Username, now)
		if err != nil {
			return err
		}

		if err := s.manager.Manifests(tx).Insert(ctx, &m); err != nil {
			return err
		}

		entry := manifest.NewAuditEntry(m.ID, manifest.ActionRegister, sess.Username, "", now)
		if err := s.manager.Audit(tx).Append(ctx, &entry); err != nil {
			return err
		}

		created = &m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "manifest registered", "id", created.ID, "carrier", created.Carrier)
	return created, nil
}

// transition loads the manifest, applies fn and persists the result plus its
// audit entry in one transaction. fn failures roll everything back, so a
// blocked transition leaves no partial state behind.
func (s *Service) transition(
	ctx context.Context,
	sess *session.Session,
	id string,
	action manifest.Action,
	justification string,
	fn func(m manifest.Manifest, actor string, at time.Time) (manifest.Manifest, error),
) (*manifest.Manifest, error) {
	now := s.now()

	var updated *manifest.Manifest
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.manager.Manifests(tx)

		m, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}

		next, err := fn(*m, sess.Username, now)
		if err != nil {
			return err
		}

		if err := repo.Update(ctx, &next); err != nil {
			return err
		}

		entry := manifest.NewAuditEntry(id, action, sess.Username, justification, now)
		if err := s.manager.Audit(tx).Append(ctx, &entry); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "manifest updated", "id", id, "action", string(action))
	return updated, nil
}

// Start assigns the manifest to the acting operator and begins handling.
func (s *Service) Start(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionStart, "", manifest.Start)
}

// Finalize records handling completion.
func (s *Service) Finalize(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionFinalize, "", manifest.Finalize)
}

// RecordSignature stores the CIA-representative signature instant.
func (s *Service) RecordSignature(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionSignature, "", manifest.RecordSignature)
}

// Deliver completes the lifecycle. Fails with common.ErrSignatureRequired
// when no signature instant has been recorded.
func (s *Service) Deliver(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionDeliver, "", manifest.Deliver)
}

// Cancel terminates a non-terminal manifest.
func (s *Service) Cancel(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionCancel, "", manifest.Cancel)
}

// Edit mutates a still-received manifest. The justification is mandatory
// and is carried into the audit entry.
func (s *Service) Edit(ctx context.Context, sess *session.Session, id string, edit manifest.Edit, justification string) (*manifest.Manifest, error) {
	return s.transition(ctx, sess, id, manifest.ActionEdit, justification,
		func(m manifest.Manifest, actor string, at time.Time) (manifest.Manifest, error) {
			return manifest.ApplyEdit(m, edit, justification, actor, at)
		})
}
