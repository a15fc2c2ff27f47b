package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rfaguiar/manifestops/internal/board"
	"github.com/rfaguiar/manifestops/internal/manifest"
)

// Board renders the dashboard projection of the current snapshot under the
// active filter.
func (a *App) Board(ctx context.Context) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	snap := a.poller.Current()
	view := board.Project(snap.Manifests, a.filter)
	renderBoard(a.out, view, snap.TakenAt, a.filter)
	return nil
}

// SetFilter updates one dimension of the board filter and re-renders. An
// empty value clears that dimension.
func (a *App) SetFilter(ctx context.Context, dimension, value string) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	switch dimension {
	case "carrier":
		a.filter.Carrier = value

	case "shift":
		if value == "" {
			a.filter.Shift = 0
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 3 {
			fmt.Fprintln(a.out, "Usage: shift <1-3> (empty to clear)")
			return err
		}
		a.filter.Shift = manifest.Shift(n)

	case "operator":
		// "operator <name> [assignee]"; matches the registrant by default.
		parts := strings.Fields(value)
		a.filter.Operator = ""
		a.filter.OperatorRole = board.RoleRegistrant
		if len(parts) > 0 {
			a.filter.Operator = parts[0]
		}
		if len(parts) > 1 && parts[1] == string(board.RoleAssignee) {
			a.filter.OperatorRole = board.RoleAssignee
		}

	case "bucket":
		switch board.Bucket(value) {
		case board.BucketAll, board.BucketInProgress, board.BucketDelivered, board.BucketCanceled:
			a.filter.Bucket = board.Bucket(value)
		default:
			fmt.Fprintln(a.out, "Usage: bucket <in-progress|delivered|canceled> (empty for all)")
			return nil
		}

	case "find":
		a.filter.IDSubstring = value

	case "violations":
		switch value {
		case "", "on":
			a.filter.ViolationsOnly = true
		case "off":
			a.filter.ViolationsOnly = false
		default:
			fmt.Fprintln(a.out, "Usage: violations [on|off]")
			return nil
		}
	}

	return a.Board(ctx)
}

// Hour updates the received-hour selection. Without the additive form the
// selection is replaced by the single hour; with it the hour toggles in and
// out of the multi-hour selection. An empty value clears the selection.
func (a *App) Hour(ctx context.Context, value string, additive bool) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	if value == "" {
		a.filter = a.filter.ClearHours()
		return a.Board(ctx)
	}

	hour, err := strconv.Atoi(value)
	if err != nil || hour < 0 || hour > 23 {
		fmt.Fprintln(a.out, "Usage: hour <0-23> | hour +<0-23> | hour clear")
		return err
	}

	a.filter = a.filter.WithHour(hour, additive)
	return a.Board(ctx)
}

// ClearFilter resets every dimension and re-renders.
func (a *App) ClearFilter(ctx context.Context) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	a.filter = board.Filter{}
	return a.Board(ctx)
}

// Refresh polls the store immediately instead of waiting for the next tick.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	if err := a.poller.Refresh(ctx); err != nil {
		fmt.Fprintf(a.out, "Refresh failed: %v\n", err)
		return err
	}
	return a.Board(ctx)
}
