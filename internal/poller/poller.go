// Package poller keeps an in-memory snapshot of recent manifests fresh by
// polling the hosted store. Views always render from the snapshot, never
// from a live query, so the dashboard stays responsive when the store is
// slow or briefly unreachable.
package poller

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

// Snapshot is one immutable poll result. Readers share it; nobody mutates
// it after the swap.
type Snapshot struct {
	Manifests []manifest.Manifest
	TakenAt   time.Time
}

type Poller struct {
	db       *sql.DB
	manager  storemanager.Manager
	interval time.Duration
	logger   logging.Logger

	current atomic.Pointer[Snapshot]

	// now is a seam for tests.
	now func() time.Time
}

func New(db *sql.DB, manager storemanager.Manager, interval time.Duration, logger logging.Logger) *Poller {
	p := &Poller{
		db:       db,
		manager:  manager,
		interval: interval,
		logger:   logger.With("module", "poller"),
		now:      time.Now,
	}
	p.current.Store(&Snapshot{})
	return p
}

// Current returns the latest snapshot. Never nil: before the first
// successful refresh it is an empty snapshot with a zero TakenAt.
func (p *Poller) Current() *Snapshot {
	return p.current.Load()
}

// Refresh queries the store once and swaps the snapshot atomically. On
// failure the previous snapshot stays in place.
func (p *Poller) Refresh(ctx context.Context) error {
	manifests, err := p.manager.Manifests(p.db).ListRecent(ctx, common.SnapshotLimit)
	if err != nil {
		return err
	}

	p.current.Store(&Snapshot{
		Manifests: manifests,
		TakenAt:   p.now(),
	})
	return nil
}

// Run refreshes immediately and then on every tick until ctx is canceled.
// Poll failures are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Error(ctx, "initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Error(ctx, "refresh failed", "error", err)
			}
		}
	}
}
