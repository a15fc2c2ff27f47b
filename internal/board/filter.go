// Package board computes the read-only projections the dashboard renders:
// Kanban columns, compliance figures, rankings and histograms, all derived
// from the in-memory manifest snapshot by pure functions.
package board

import (
	"strings"

	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/sla"
)

// Role selects which operator field a filter matches against.
type Role string

const (
	RoleRegistrant Role = "registrant"
	RoleAssignee   Role = "assignee"
)

// Bucket groups statuses the way the board tabs do.
type Bucket string

const (
	BucketAll        Bucket = ""
	BucketInProgress Bucket = "in-progress"
	BucketDelivered  Bucket = "delivered"
	BucketCanceled   Bucket = "canceled"
)

// Filter is one multi-dimension selection over the manifest snapshot.
// The zero value matches everything.
type Filter struct {
	Carrier        string
	Shift          manifest.Shift // 0 = any
	Operator       string
	OperatorRole   Role // defaults to registrant when Operator is set
	Bucket         Bucket
	IDSubstring    string
	Hours          map[int]struct{} // empty = all hours
	ViolationsOnly bool
}

// WithHour returns a copy of f with the hour-of-day selection updated.
// Without the additive modifier the selection is replaced by {hour};
// with it, the hour is toggled in or out of the current selection one at a
// time. The two semantics produce different result sets and both are relied
// on by the board's hour chips, so they must not be merged.
func (f Filter) WithHour(hour int, additive bool) Filter {
	next := make(map[int]struct{}, len(f.Hours)+1)

	if additive {
		for h := range f.Hours {
			next[h] = struct{}{}
		}
		if _, ok := next[hour]; ok {
			delete(next, hour)
		} else {
			next[hour] = struct{}{}
		}
	} else {
		next[hour] = struct{}{}
	}

	f.Hours = next
	return f
}

// ClearHours returns a copy of f with no hour restriction.
func (f Filter) ClearHours() Filter {
	f.Hours = nil
	return f
}

// hourOf is the hour dimension of a manifest: the hour it was received.
func hourOf(m *manifest.Manifest) (int, bool) {
	if m.ReceivedAt == nil {
		return 0, false
	}
	return m.ReceivedAt.Hour(), true
}

// Matches reports whether m passes every enabled dimension of f.
func (f Filter) Matches(m *manifest.Manifest) bool {
	if f.Carrier != "" && !strings.EqualFold(f.Carrier, m.Carrier) {
		return false
	}
	if f.Shift != 0 && f.Shift != m.Shift {
		return false
	}

	if f.Operator != "" {
		field := m.RegisteredBy
		if f.OperatorRole == RoleAssignee {
			field = m.AssignedTo
		}
		if !strings.EqualFold(f.Operator, field) {
			return false
		}
	}

	switch f.Bucket {
	case BucketInProgress:
		if !m.InProgress() {
			return false
		}
	case BucketDelivered:
		if m.Status != manifest.StatusDelivered {
			return false
		}
	case BucketCanceled:
		if m.Status != manifest.StatusCanceled {
			return false
		}
	}

	if f.IDSubstring != "" && !strings.Contains(strings.ToUpper(m.ID), strings.ToUpper(f.IDSubstring)) {
		return false
	}

	if len(f.Hours) > 0 {
		hour, ok := hourOf(m)
		if !ok {
			return false
		}
		if _, selected := f.Hours[hour]; !selected {
			return false
		}
	}

	if f.ViolationsOnly && !sla.NonConforming(m) {
		return false
	}

	return true
}

// Apply returns the manifests passing f, preserving input order.
func (f Filter) Apply(manifests []manifest.Manifest) []manifest.Manifest {
	out := make([]manifest.Manifest, 0, len(manifests))
	for i := range manifests {
		if f.Matches(&manifests[i]) {
			out = append(out, manifests[i])
		}
	}
	return out
}
