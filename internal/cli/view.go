package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rfaguiar/manifestops/internal/board"
	"github.com/rfaguiar/manifestops/internal/dossier"
	"github.com/rfaguiar/manifestops/internal/sla"
	"github.com/rfaguiar/manifestops/internal/timeparse"
)

func describeFilter(f board.Filter) string {
	var parts []string
	if f.Carrier != "" {
		parts = append(parts, "carrier="+f.Carrier)
	}
	if f.Shift != 0 {
		parts = append(parts, fmt.Sprintf("shift=%d", f.Shift))
	}
	if f.Operator != "" {
		role := f.OperatorRole
		if role == "" {
			role = board.RoleRegistrant
		}
		parts = append(parts, fmt.Sprintf("operator=%s(%s)", f.Operator, role))
	}
	if f.Bucket != board.BucketAll {
		parts = append(parts, "bucket="+string(f.Bucket))
	}
	if f.IDSubstring != "" {
		parts = append(parts, "find="+f.IDSubstring)
	}
	if len(f.Hours) > 0 {
		hours := make([]string, 0, len(f.Hours))
		for h := 0; h < 24; h++ {
			if _, ok := f.Hours[h]; ok {
				hours = append(hours, fmt.Sprintf("%02d", h))
			}
		}
		parts = append(parts, "hours="+strings.Join(hours, ","))
	}
	if f.ViolationsOnly {
		parts = append(parts, "violations-only")
	}
	if len(parts) == 0 {
		return "no filter"
	}
	return strings.Join(parts, " ")
}

func renderBoard(w io.Writer, v board.View, takenAt time.Time, f board.Filter) {
	age := "never refreshed"
	if !takenAt.IsZero() {
		age = "as of " + takenAt.Format("15:04:05")
	}
	fmt.Fprintf(w, "Board: %d manifests (%s, %s)\n", v.Total, describeFilter(f), age)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range v.Columns {
		fmt.Fprintf(tw, "%s\t%d\n", strings.ToUpper(string(col.Status)), len(col.Manifests))
		for _, m := range col.Manifests {
			fmt.Fprintf(tw, "  %s\t%s s%d\trecv %s\t%s\n",
				m.ID, m.Carrier, m.Shift, timeparse.Format(m.ReceivedAt), m.AssignedTo)
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "Compliance: presentation %.1f%%  availability %.1f%%  attendance %.1f%%  (non-conforming: %d)\n",
		v.Compliance[sla.RulePresentation],
		v.Compliance[sla.RuleAvailability],
		v.Compliance[sla.RuleAttendance],
		v.NonConforming)

	if len(v.TopCarriers) > 0 {
		fmt.Fprintf(w, "Top carriers: %s\n", formatCounts(v.TopCarriers))
	}
	if len(v.TopOperators) > 0 {
		fmt.Fprintf(w, "Top operators: %s\n", formatCounts(v.TopOperators))
	}

	if hist := formatHistogram(v.HourHistogram); hist != "" {
		fmt.Fprintf(w, "By hour: %s\n", hist)
	}

	if len(v.CarrierRanking) > 0 {
		fmt.Fprintln(w, "Carrier compliance ranking:")
		for i, c := range v.CarrierRanking {
			fmt.Fprintf(w, "  %d. %s %.1f%% (%d/%d within)\n", i+1, c.Carrier, c.Percent, c.Within, c.Evaluated)
		}
	}
}

func formatCounts(counts []board.Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s(%d)", c.Key, c.Count))
	}
	return strings.Join(parts, " ")
}

func formatHistogram(hist [24]int) string {
	var parts []string
	for h, n := range hist {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%02dh:%d", h, n))
		}
	}
	return strings.Join(parts, " ")
}

func renderDossier(w io.Writer, d *dossier.Dossier) {
	m := d.Manifest
	fmt.Fprintf(w, "%s  %s  shift %d  %s\n", m.ID, m.Carrier, m.Shift, strings.ToUpper(string(m.Status)))
	fmt.Fprintf(w, "  registered by %s", m.RegisteredBy)
	if m.AssignedTo != "" {
		fmt.Fprintf(w, ", assigned to %s", m.AssignedTo)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  pulled\t%s\n", timeparse.Format(m.PulledAt))
	fmt.Fprintf(tw, "  received\t%s\n", timeparse.Format(m.ReceivedAt))
	fmt.Fprintf(tw, "  started\t%s\n", timeparse.Format(m.StartedAt))
	fmt.Fprintf(tw, "  completed\t%s\n", timeparse.Format(m.CompletedAt))
	fmt.Fprintf(tw, "  signed\t%s\n", timeparse.Format(m.SignedAt))
	fmt.Fprintf(tw, "  delivered\t%s\n", timeparse.Format(m.DeliveredAt))
	tw.Flush()

	if len(d.Results) > 0 {
		fmt.Fprintln(w, "Service rules:")
		for _, r := range d.Results {
			mark := "ok"
			if r.Violated {
				mark = "VIOLATED"
			}
			fmt.Fprintf(w, "  %s\t%.1f min of %.0f\t%s\n", r.Rule, r.Minutes, r.Limit.Minutes(), mark)
		}
	}

	for _, violation := range d.OrderViolations {
		fmt.Fprintf(w, "Warning: %s\n", violation)
	}

	if len(d.Timeline) > 0 {
		fmt.Fprintln(w, "History (newest first):")
		for _, e := range d.Timeline {
			line := fmt.Sprintf("  %s  %s by %s", e.CreatedAt.Format("02/01/2006 15:04"), e.Action, e.Actor)
			if e.Justification != "" {
				line += fmt.Sprintf(" (%q)", e.Justification)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(d.Attachments) > 0 {
		fmt.Fprintln(w, "Attachments:")
		for _, f := range d.Attachments {
			fmt.Fprintf(w, "  %s  %s (by %s)\n", f.ID, f.FileName, f.UploadedBy)
		}
	}
}
