package cli

import (
	"context"
	"fmt"

	"github.com/rfaguiar/manifestops/internal/cryptox"
	"github.com/rfaguiar/manifestops/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates against the store. A
// successful login becomes the operator's single live session: whatever
// terminal held the previous one gets kicked out by the store-side token
// swap. The kick-out watcher for this session is started here and canceled
// on any logout path.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	sess, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return err
	}

	a.dropSession()
	a.sess = sess

	wctx, cancel := context.WithCancel(ctx)
	a.watcherCancel = cancel
	go a.watchKickout(wctx, sess)

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.DisplayName)
	return nil
}

func (a *App) watchKickout(ctx context.Context, sess *session.Session) {
	err := a.watcher.Run(ctx, sess, func() {
		a.kicked.Store(true)
	})
	if err != nil && ctx.Err() == nil {
		a.logger.Warn(ctx, "session watcher stopped", "error", err)
	}
}

// Logout ends the current session and resets the board filter.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	if err := a.sessions.Logout(ctx, a.sess); err != nil {
		a.logger.Error(ctx, "logout failed", "error", err)
		return err
	}

	a.dropSession()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
