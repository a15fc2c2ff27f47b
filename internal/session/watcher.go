package session

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/store/notify"
)

// Watcher turns the store's session-event stream into a kick-out callback.
// It is the push half of session validation; the pull half is
// Service.Validate on the UI's before-command hook.
type Watcher struct {
	subscriber notify.Subscriber
	logger     logging.Logger
}

// NewWatcher constructs a Watcher over the given subscriber.
func NewWatcher(subscriber notify.Subscriber, logger logging.Logger) *Watcher {
	return &Watcher{subscriber: subscriber, logger: logger.With("module", "session_watcher")}
}

// Run subscribes to session events for sess's operator and blocks until the
// context is canceled or the stream ends. onKickout fires at most once, on
// the first event carrying a token other than ours; later events are
// redundant repetitions of the same fact.
func (w *Watcher) Run(ctx context.Context, sess *Session, onKickout func()) error {
	events, teardown, err := w.subscriber.Subscribe(ctx, sess.OperatorID)
	if err != nil {
		return err
	}
	defer teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.ActiveToken == sess.Token {
				continue
			}
			w.logger.Info(ctx, "session superseded by a newer login", "username", sess.Username)
			onKickout()
			return nil
		}
	}
}
