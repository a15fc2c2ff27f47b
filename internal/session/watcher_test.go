package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rfaguiar/manifestops/internal/models"
)

type fakeSubscriber struct {
	events chan models.SessionEvent
	torn   bool
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, operatorID string) (<-chan models.SessionEvent, func(), error) {
	return f.events, func() { f.torn = true }, nil
}

func TestWatcher_FiresOnForeignToken(t *testing.T) {
	sub := &fakeSubscriber{events: make(chan models.SessionEvent, 4)}
	w := NewWatcher(sub, testLogger())
	sess := &Session{OperatorID: "op-1", Username: "mmartins", Token: "token-old"}

	fired := 0
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), sess, func() { fired++ })
	}()

	// Our own token being re-published is not a kick-out.
	sub.events <- models.SessionEvent{OperatorID: "op-1", ActiveToken: "token-old"}
	// A different token is.
	sub.events <- models.SessionEvent{OperatorID: "op-1", ActiveToken: "token-new"}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not return after kick-out")
	}

	require.Equal(t, 1, fired, "kick-out callback must fire exactly once")
	require.True(t, sub.torn, "subscription must be torn down")
}

func TestWatcher_StreamEndWithoutKickout(t *testing.T) {
	sub := &fakeSubscriber{events: make(chan models.SessionEvent)}
	w := NewWatcher(sub, testLogger())
	sess := &Session{OperatorID: "op-1", Token: "token-old"}

	fired := 0
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), sess, func() { fired++ })
	}()

	close(sub.events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not return after stream end")
	}
	require.Zero(t, fired)
}

func TestWatcher_ContextCancel(t *testing.T) {
	sub := &fakeSubscriber{events: make(chan models.SessionEvent)}
	w := NewWatcher(sub, testLogger())
	sess := &Session{OperatorID: "op-1", Token: "token-old"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, sess, func() {})
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not return after cancel")
	}
}
