// Package cli is the terminal dashboard: a REPL over the operations
// services, rendering board projections from the poller's snapshot and
// enforcing the single-active-session policy on every command.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rfaguiar/manifestops/internal/attachments"
	"github.com/rfaguiar/manifestops/internal/board"
	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/config"
	"github.com/rfaguiar/manifestops/internal/dossier"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/poller"
	"github.com/rfaguiar/manifestops/internal/registry"
	"github.com/rfaguiar/manifestops/internal/session"
	"github.com/rfaguiar/manifestops/internal/store/notify"
	"github.com/rfaguiar/manifestops/internal/store/storemanager"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	sessions    *session.Service
	registry    *registry.Service
	dossiers    *dossier.Service
	attachments *attachments.Service
	poller      *poller.Poller
	watcher     *session.Watcher

	reader *bufio.Reader
	out    io.Writer

	sess          *session.Session
	filter        board.Filter
	kicked        atomic.Bool
	watcherCancel context.CancelFunc
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := storemanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	manager := storemanager.NewPostgresManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	subscriber := notify.NewPostgresListener(c.DatabaseDSN, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		sessions:    session.NewService(db, manager, []byte(c.SecretKey), c.SessionValidity, logger),
		registry:    registry.NewService(db, manager, logger),
		dossiers:    dossier.NewService(db, manager, logger),
		attachments: attachments.NewService(db, manager, c, logger),
		poller:      poller.New(db, manager, c.PollInterval, logger),
		watcher:     session.NewWatcher(subscriber, logger),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.sess != nil
}

func (a *App) getStatus() string {
	if a.sess == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.sess.Username)
}

// require is the before-command hook of every authenticated command: it
// checks the push-side kick-out flag first, then validates the session
// against the store. Either path ends with local logout when this session
// has been superseded by a newer login.
func (a *App) require(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in. Use 'login' first.")
		return common.ErrUnauthorized
	}

	if a.kicked.Load() {
		a.forceLogout()
		return common.ErrSessionSuperseded
	}

	if err := a.sessions.Validate(ctx, a.sess); err != nil {
		if errors.Is(err, common.ErrSessionSuperseded) {
			a.forceLogout()
		}
		return err
	}
	return nil
}

func (a *App) forceLogout() {
	fmt.Fprintln(a.out, "Session taken over by a newer login on another terminal. Logged out.")
	a.dropSession()
}

func (a *App) dropSession() {
	if a.watcherCancel != nil {
		a.watcherCancel()
		a.watcherCancel = nil
	}
	a.sess = nil
	a.kicked.Store(false)
	a.filter = board.Filter{}
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	go func() {
		if err := a.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error(ctx, "poller stopped", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Manifest operations dashboard (type 'help' for commands)")

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	if a.isLoggedIn() {
		if err := a.sessions.Logout(ctx, a.sess); err != nil {
			a.logger.Error(ctx, "logout on exit failed", "error", err)
		}
		a.dropSession()
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error(ctx, "db close failed", "error", err)
	}
}
