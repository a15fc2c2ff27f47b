// Package notify implements the store's change-subscription API over
// PostgreSQL LISTEN/NOTIFY. The operators table carries a trigger that
// publishes active-token changes on the session channel; this package turns
// those notifications into a typed event stream.
package notify

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/models"
)

// SessionChannel is the NOTIFY channel published by the operators trigger.
const SessionChannel = "session_events"

// PostgresListener subscribes to session events on a dedicated connection.
// LISTEN requires a raw pgx connection; the pooled database/sql handle used
// by the repositories cannot carry it.
type PostgresListener struct {
	dsn    string
	logger logging.Logger
}

// NewPostgresListener constructs a listener for the given DSN.
func NewPostgresListener(dsn string, logger logging.Logger) *PostgresListener {
	return &PostgresListener{dsn: dsn, logger: logger.With("module", "notify")}
}

// Subscribe opens a connection, LISTENs on the session channel and streams
// events for the given operator until the context is canceled or the
// returned teardown is called. The channel is closed on teardown and on
// connection failure; consumers treat a closed channel as "stream ended",
// not as a kick-out.
func (p *PostgresListener) Subscribe(ctx context.Context, operatorID string) (<-chan models.SessionEvent, func(), error) {
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return nil, nil, err
	}

	if _, err := conn.Exec(ctx, "LISTEN "+SessionChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan models.SessionEvent, 4)

	go func() {
		defer close(events)
		defer func() {
			// Close with a fresh context; subCtx is already canceled on
			// teardown.
			_ = conn.Close(context.Background())
		}()

		for {
			notification, err := conn.WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					p.logger.Warn(subCtx, "session subscription ended", "error", err.Error())
				}
				return
			}

			var event models.SessionEvent
			if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
				p.logger.Warn(subCtx, "malformed session event payload", "payload", notification.Payload)
				continue
			}
			if event.OperatorID != operatorID {
				continue
			}

			select {
			case events <- event:
			default:
				// Consumer is behind; dropping is safe because any newer
				// event carries the latest token anyway.
			}
		}
	}()

	return events, cancel, nil
}
