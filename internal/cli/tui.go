package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	tierStyles = map[layout.Tier]lipgloss.Style{
		layout.TierNone:     lipgloss.NewStyle().Foreground(colorDim),
		layout.TierNormal:   lipgloss.NewStyle().Foreground(colorGreen),
		layout.TierWarning:  lipgloss.NewStyle().Foreground(colorYellow),
		layout.TierCritical: lipgloss.NewStyle().Foreground(colorRed),
	}
)

// =============================================================================
// NodeListModel - Interactive topology browser
// =============================================================================

// nodeRow is one node of either group.
type nodeRow struct {
	Group string
	Node  topology.Node
	Tier  layout.Tier
}

// NodeListModel is the bubbletea model behind `topodraw inspect`. The list
// shows every node; enter opens the node's ports and their peers.
type NodeListModel struct {
	Rows   []nodeRow
	Cursor int
	Height int
	Offset int
	Detail bool

	peers map[string][]peer
}

// peer is the far end of an edge, seen from one port.
type peer struct {
	Node     string
	Port     string
	Protocol topology.ProtocolKind
}

// NewNodeListModel creates a browser for t, classifying capacity with th.
func NewNodeListModel(t topology.Topology, th layout.Thresholds) NodeListModel {
	top, bottom := t.Captions()
	var rows []nodeRow
	for _, n := range t.Top {
		rows = append(rows, nodeRow{Group: top, Node: n, Tier: layout.Classify(n.Capacity, th)})
	}
	for _, n := range t.Bottom {
		rows = append(rows, nodeRow{Group: bottom, Node: n, Tier: layout.Classify(n.Capacity, th)})
	}
	return NodeListModel{Rows: rows, Height: 15, peers: peerIndex(t)}
}

// peerIndex maps every port address to the ports it is cabled to.
// Addresses that appear on several ports resolve to the last one.
func peerIndex(t topology.Topology) map[string][]peer {
	owner := make(map[string]peer)
	for _, n := range t.Nodes() {
		for _, p := range n.Ports {
			owner[p.Address] = peer{Node: n.Name, Port: p.DisplayLabel(), Protocol: p.Protocol}
		}
	}
	out := make(map[string][]peer)
	for _, e := range t.Edges {
		src, okSrc := owner[e.Source]
		dst, okDst := owner[e.Target]
		if !okSrc || !okDst {
			continue
		}
		out[e.Source] = append(out[e.Source], dst)
		out[e.Target] = append(out[e.Target], src)
	}
	return out
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.Rows) > 0 {
				m.Detail = !m.Detail
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Topology"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ ports  esc back  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty topology)"))
		b.WriteString("\n")
		return b.String()
	}

	if m.Detail {
		b.WriteString(m.detailView(m.Rows[m.Cursor]))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		util := "—"
		if r.Node.Capacity != nil && r.Node.Capacity.Total > 0 {
			util = fmt.Sprintf("%.0f%%", r.Node.Capacity.Ratio()*100)
		}
		rows = append(rows, []string{cursor, r.Node.Name, r.Group, fmt.Sprint(len(r.Node.Ports)), util})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Group", "Ports", "Util").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = tierStyles[m.Rows[idx].Tier]
			}
			if idx == m.Cursor {
				if col == 4 {
					return base.Bold(true)
				}
				return base.Foreground(colorCyan).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

func (m NodeListModel) detailView(r nodeRow) string {
	var b strings.Builder

	b.WriteString(listSelectedStyle.Render(r.Node.Name))
	b.WriteString(listDimStyle.Render("  " + r.Group))
	b.WriteString("\n")
	for _, a := range r.Node.Attributes {
		b.WriteString(listNormalStyle.Render(fmt.Sprintf("  %s: %s", a.Key, a.Value)))
		b.WriteString("\n")
	}
	if c := r.Node.Capacity; c != nil && c.Total > 0 {
		line := fmt.Sprintf("  capacity: %g/%g %s (%.0f%%)", c.Used, c.Total, c.Unit, c.Ratio()*100)
		b.WriteString(tierStyles[r.Tier].Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(r.Node.Ports) == 0 {
		b.WriteString(listDimStyle.Render("  no ports"))
		b.WriteString("\n")
		return b.String()
	}
	for _, p := range r.Node.Ports {
		b.WriteString(fmt.Sprintf("  %-28s %s\n", p.DisplayLabel(), listDimStyle.Render(string(p.Protocol))))
		peers := m.peers[p.Address]
		if len(peers) == 0 {
			b.WriteString(listDimStyle.Render("      not connected"))
			b.WriteString("\n")
			continue
		}
		for _, pr := range peers {
			b.WriteString(listDimStyle.Render(fmt.Sprintf("      %s %s / %s", iconArrow, pr.Node, pr.Port)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
