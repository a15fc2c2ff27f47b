// Package sla evaluates the elapsed-time service rules over manifest
// lifecycle instants and aggregates compliance for the dashboard views.
package sla

import (
	"sort"
	"time"

	"github.com/rfaguiar/manifestops/internal/manifest"
)

// RuleID identifies one of the three fixed service rules.
type RuleID string

const (
	// RulePresentation: pulled → received within 10 minutes.
	RulePresentation RuleID = "presentation"
	// RuleAvailability: started → completed within 2 hours.
	RuleAvailability RuleID = "availability"
	// RuleAttendance: completed → signature within 15 minutes.
	RuleAttendance RuleID = "attendance"
)

// Rule binds an instant pair to its threshold.
type Rule struct {
	ID        RuleID
	Threshold time.Duration
	start     func(*manifest.Manifest) *time.Time
	end       func(*manifest.Manifest) *time.Time
}

// Rules lists the fixed rules in display order.
var Rules = []Rule{
	{
		ID:        RulePresentation,
		Threshold: 10 * time.Minute,
		start:     func(m *manifest.Manifest) *time.Time { return m.PulledAt },
		end:       func(m *manifest.Manifest) *time.Time { return m.ReceivedAt },
	},
	{
		ID:        RuleAvailability,
		Threshold: 120 * time.Minute,
		start:     func(m *manifest.Manifest) *time.Time { return m.StartedAt },
		end:       func(m *manifest.Manifest) *time.Time { return m.CompletedAt },
	},
	{
		ID:        RuleAttendance,
		Threshold: 15 * time.Minute,
		start:     func(m *manifest.Manifest) *time.Time { return m.CompletedAt },
		end:       func(m *manifest.Manifest) *time.Time { return m.SignedAt },
	},
}

// ElapsedMinutes returns the minutes between two instants. ok is false iff
// either side is missing; the pair is then excluded from evaluation, never
// counted as a violation. Negative raw differences clamp to 0, guarding
// against operator clock skew producing nonsensical durations.
func ElapsedMinutes(start, end *time.Time) (float64, bool) {
	if start == nil || end == nil {
		return 0, false
	}
	minutes := end.Sub(*start).Minutes()
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}

// Result is one evaluated rule on one manifest.
type Result struct {
	Rule     RuleID
	Minutes  float64
	Limit    time.Duration
	Violated bool
}

// Evaluate runs every rule whose instant pair is present on m.
func Evaluate(m *manifest.Manifest) []Result {
	var results []Result
	for _, r := range Rules {
		minutes, ok := ElapsedMinutes(r.start(m), r.end(m))
		if !ok {
			continue
		}
		results = append(results, Result{
			Rule:     r.ID,
			Minutes:  minutes,
			Limit:    r.Threshold,
			Violated: minutes > r.Threshold.Minutes(),
		})
	}
	return results
}

// NonConforming reports whether any evaluated rule exceeds its threshold.
func NonConforming(m *manifest.Manifest) bool {
	for _, r := range Evaluate(m) {
		if r.Violated {
			return true
		}
	}
	return false
}

// Compliance is the percentage of evaluated pairs of one rule that landed
// within threshold, across the given manifests. Zero evaluated pairs yields
// exactly 100: an empty filter must read as vacuously compliant, not as 0%.
func Compliance(rule RuleID, manifests []manifest.Manifest) float64 {
	var evaluated, within int
	for i := range manifests {
		for _, r := range Evaluate(&manifests[i]) {
			if r.Rule != rule {
				continue
			}
			evaluated++
			if !r.Violated {
				within++
			}
		}
	}
	if evaluated == 0 {
		return 100
	}
	return float64(within) / float64(evaluated) * 100
}

// CarrierCompliance aggregates rule evaluations for one carrier.
type CarrierCompliance struct {
	Carrier   string
	Evaluated int
	Within    int
	Percent   float64
}

// CarrierRanking ranks carriers by overall compliance, considering only
// manifests where at least one rule fired. Order is descending by percent;
// equal percentages keep first-seen carrier order (stable sort contract).
func CarrierRanking(manifests []manifest.Manifest) []CarrierCompliance {
	index := make(map[string]int)
	var ranking []CarrierCompliance

	for i := range manifests {
		results := Evaluate(&manifests[i])
		if len(results) == 0 {
			continue
		}

		carrier := manifests[i].Carrier
		pos, seen := index[carrier]
		if !seen {
			pos = len(ranking)
			index[carrier] = pos
			ranking = append(ranking, CarrierCompliance{Carrier: carrier})
		}

		for _, r := range results {
			ranking[pos].Evaluated++
			if !r.Violated {
				ranking[pos].Within++
			}
		}
	}

	for i := range ranking {
		ranking[i].Percent = float64(ranking[i].Within) / float64(ranking[i].Evaluated) * 100
	}

	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Percent > ranking[b].Percent
	})

	return ranking
}
