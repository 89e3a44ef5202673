// Package report summarizes node capacity utilization of a topology.
//
// [Build] classifies every node that reports capacity into the same tiers
// the layout engine colors node bodies with, and [Render] prints the result
// as a colored console table.
package report

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// Row is the utilization of one node.
type Row struct {
	Group string      `json:"group"`
	Node  string      `json:"node"`
	Used  float64     `json:"used"`
	Total float64     `json:"total"`
	Free  float64     `json:"free"`
	Unit  string      `json:"unit,omitempty"`
	Ratio float64     `json:"ratio"`
	Tier  layout.Tier `json:"tier"`
}

// Total aggregates rows sharing a unit.
type Total struct {
	Unit  string      `json:"unit,omitempty"`
	Used  float64     `json:"used"`
	Total float64     `json:"total"`
	Ratio float64     `json:"ratio"`
	Tier  layout.Tier `json:"tier"`
}

// Report is the capacity summary of a topology.
type Report struct {
	Thresholds layout.Thresholds   `json:"thresholds"`
	Rows       []Row               `json:"rows"`
	Totals     []Total             `json:"totals"`
	Counts     map[layout.Tier]int `json:"counts"`
	NoData     []string            `json:"no_data,omitempty"`
}

// Build classifies every node with capacity data. Rows are ordered by
// utilization, highest first; nodes without data are listed in NoData.
func Build(t topology.Topology, th layout.Thresholds) Report {
	top, bottom := t.Captions()
	r := Report{Thresholds: th, Counts: make(map[layout.Tier]int)}

	add := func(caption string, nodes []topology.Node) {
		for _, n := range nodes {
			if n.Capacity == nil || n.Capacity.Total <= 0 {
				r.NoData = append(r.NoData, n.Name)
				continue
			}
			tier := layout.Classify(n.Capacity, th)
			r.Counts[tier]++
			r.Rows = append(r.Rows, Row{
				Group: caption,
				Node:  n.Name,
				Used:  n.Capacity.Used,
				Total: n.Capacity.Total,
				Free:  n.Capacity.Free(),
				Unit:  n.Capacity.Unit,
				Ratio: n.Capacity.Ratio(),
				Tier:  tier,
			})
		}
	}
	add(top, t.Top)
	add(bottom, t.Bottom)

	slices.SortStableFunc(r.Rows, func(a, b Row) int { return cmp.Compare(b.Ratio, a.Ratio) })

	byUnit := lo.GroupBy(r.Rows, func(row Row) string { return row.Unit })
	for _, unit := range slices.Sorted(maps.Keys(byUnit)) {
		rows := byUnit[unit]
		tot := Total{
			Unit:  unit,
			Used:  lo.SumBy(rows, func(row Row) float64 { return row.Used }),
			Total: lo.SumBy(rows, func(row Row) float64 { return row.Total }),
		}
		tot.Ratio = tot.Used / tot.Total
		tot.Tier = layout.ClassifyRatio(tot.Ratio, th)
		r.Totals = append(r.Totals, tot)
	}
	return r
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	tierColors = map[layout.Tier]lipgloss.Color{
		layout.TierNormal:   lipgloss.Color("35"),
		layout.TierWarning:  lipgloss.Color("220"),
		layout.TierCritical: lipgloss.Color("167"),
	}
)

// Render writes r as a table followed by per-unit totals.
func Render(w io.Writer, r Report) error {
	if len(r.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No capacity data.")
		return err
	}

	rows := lo.Map(r.Rows, func(row Row, _ int) []string {
		return []string{
			row.Node,
			row.Group,
			amount(row.Used, row.Unit),
			amount(row.Free, row.Unit),
			amount(row.Total, row.Unit),
			percent(row.Ratio),
			string(row.Tier),
		}
	})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Node", "Group", "Used", "Free", "Total", "Util", "Tier").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 5 && row >= 0 && row < len(r.Rows) {
				return cellStyle.Foreground(tierColors[r.Rows[row].Tier])
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	for _, tot := range r.Totals {
		style := lipgloss.NewStyle().Foreground(tierColors[tot.Tier])
		fmt.Fprintf(&b, "Total: %s of %s (%s)\n",
			amount(tot.Used, tot.Unit), amount(tot.Total, tot.Unit), style.Render(percent(tot.Ratio)))
	}
	fmt.Fprintf(&b, "Normal %d · Warning %d · Critical %d (thresholds %s / %s)\n",
		r.Counts[layout.TierNormal], r.Counts[layout.TierWarning], r.Counts[layout.TierCritical],
		percent(r.Thresholds.Warning), percent(r.Thresholds.Critical))
	if len(r.NoData) > 0 {
		fmt.Fprintf(&b, "No data: %s\n", strings.Join(r.NoData, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func amount(v float64, unit string) string {
	s := fmt.Sprintf("%.1f", v)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
