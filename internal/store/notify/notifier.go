package notify

import (
	"context"

	"github.com/rfaguiar/manifestops/internal/models"
)

// Subscriber is the change-subscription side of the hosted store: a
// cancellable stream of row-level session events scoped to one operator.
// Callers must invoke the returned teardown on logout.
type Subscriber interface {
	Subscribe(ctx context.Context, operatorID string) (<-chan models.SessionEvent, func(), error)
}
