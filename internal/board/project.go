package board

import (
	"sort"

	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/sla"
)

// Column is one Kanban lane.
type Column struct {
	Status    manifest.Status
	Manifests []manifest.Manifest
}

// Count is one entry of a top-N ranking.
type Count struct {
	Key   string
	Count int
}

// View is the full dashboard projection for one filter. It is recomputed
// from scratch on every filter or snapshot change; nothing in it is shared
// with the snapshot, so the renderer may hold it across refreshes.
type View struct {
	Total          int
	Columns        []Column
	Compliance     map[sla.RuleID]float64
	NonConforming  int
	TopCarriers    []Count
	TopOperators   []Count
	HourHistogram  [24]int
	CarrierRanking []sla.CarrierCompliance
}

// columnOrder fixes the lane layout of the board.
var columnOrder = []manifest.Status{
	manifest.StatusReceived,
	manifest.StatusStarted,
	manifest.StatusFinalized,
	manifest.StatusDelivered,
	manifest.StatusCanceled,
}

// Project computes the dashboard view of the given manifests under f.
// Pure function: no side effects, input slices are not mutated.
func Project(manifests []manifest.Manifest, f Filter) View {
	filtered := f.Apply(manifests)

	view := View{
		Total:      len(filtered),
		Compliance: make(map[sla.RuleID]float64, len(sla.Rules)),
	}

	byStatus := make(map[manifest.Status][]manifest.Manifest)
	for _, m := range filtered {
		byStatus[m.Status] = append(byStatus[m.Status], m)

		if sla.NonConforming(&m) {
			view.NonConforming++
		}
		if hour, ok := hourOf(&m); ok {
			view.HourHistogram[hour]++
		}
	}

	for _, status := range columnOrder {
		view.Columns = append(view.Columns, Column{Status: status, Manifests: byStatus[status]})
	}

	for _, rule := range sla.Rules {
		view.Compliance[rule.ID] = sla.Compliance(rule.ID, filtered)
	}

	view.TopCarriers = topN(filtered, 5, func(m *manifest.Manifest) string { return m.Carrier })
	view.TopOperators = topN(filtered, 5, func(m *manifest.Manifest) string { return m.AssignedTo })
	view.CarrierRanking = sla.CarrierRanking(filtered)

	return view
}

// topN counts manifests per key and returns the n largest groups. Empty keys
// are skipped. Equal counts keep first-seen order: the sort is stable over a
// slice built in encounter order, so rankings do not flicker between
// refreshes of an unchanged snapshot.
func topN(manifests []manifest.Manifest, n int, key func(*manifest.Manifest) string) []Count {
	index := make(map[string]int)
	var counts []Count

	for i := range manifests {
		k := key(&manifests[i])
		if k == "" {
			continue
		}
		pos, seen := index[k]
		if !seen {
			pos = len(counts)
			index[k] = pos
			counts = append(counts, Count{Key: k})
		}
		counts[pos].Count++
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
