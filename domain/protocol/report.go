package protocol

import (
	"fmt"
	"strings"
)

// ReportColumn labels one cell family of the four-way overhead report.
type ReportColumn struct {
	// Label identifies the overhead/payload combination.
	Label string

	// Sizes are the per-protocol totals for the column's payload and mode.
	Sizes FrameSizes
}

// Report is the four-way overhead table (min/max overhead × min/max
// observed payload) across all supported protocols.
type Report struct {
	Columns []ReportColumn
}

// BuildReport computes the report for the observed payload extremes.
func BuildReport(minPayload, maxPayload int) Report {
	return Report{
		Columns: []ReportColumn{
			{Label: "Min OH-Min PL", Sizes: Sizes(minPayload, false)},
			{Label: "Max OH-Min PL", Sizes: Sizes(minPayload, true)},
			{Label: "Min OH-Max PL", Sizes: Sizes(maxPayload, false)},
			{Label: "Max OH-Max PL", Sizes: Sizes(maxPayload, true)},
		},
	}
}

// OverheadPercent returns the overhead share of the total frame for one
// protocol in one column, in percent.
func (c ReportColumn) OverheadPercent(p Protocol) float64 {
	total := c.Sizes.Total(p)
	if total == 0 {
		return 0
	}
	overhead := total - c.Sizes.Payload
	return float64(overhead) / float64(total) * 100
}

// Render formats the report as an aligned text table.
func (r Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-11s", "Protocol")
	for _, col := range r.Columns {
		fmt.Fprintf(&b, " | %-13s %-7s", col.Label, "(OH %)")
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 11+len(r.Columns)*26))
	b.WriteString("\n")

	for _, p := range All() {
		fmt.Fprintf(&b, "%-11s", p)
		for _, col := range r.Columns {
			fmt.Fprintf(&b, " | %5d bytes   %5.1f%% ", col.Sizes.Total(p), col.OverheadPercent(p))
		}
		b.WriteString("\n")
	}

	return b.String()
}
