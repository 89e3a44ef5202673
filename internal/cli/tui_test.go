package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

func tuiTopology() topology.Topology {
	return topology.Topology{
		Top: []topology.Node{{
			Name:       "array-01",
			Attributes: []topology.Attribute{{Key: "model", Value: "FA-X70"}},
			Capacity:   &topology.Capacity{Used: 90, Total: 100, Unit: "TiB"},
			Ports: []topology.Port{
				{Address: "t0", Protocol: topology.ProtocolFC, Label: "CT0.FC0"},
				{Address: "t1", Protocol: topology.ProtocolFC},
			},
		}},
		Bottom: []topology.Node{
			{Name: "esx-01", Ports: []topology.Port{{Address: "b0", Protocol: topology.ProtocolFC}}},
			{Name: "esx-02"},
		},
		Edges: []topology.Edge{
			{Source: "t0", Target: "b0"},
			{Source: "t1", Target: "missing"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m NodeListModel, msgs ...tea.Msg) (NodeListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(NodeListModel)
	}
	return m, cmd
}

func TestNodeListModelRows(t *testing.T) {
	m := NewNodeListModel(tuiTopology(), layout.DefaultThresholds())
	if len(m.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.Rows))
	}
	if m.Rows[0].Group != topology.DefaultTopLabel || m.Rows[2].Group != topology.DefaultBottomLabel {
		t.Errorf("groups = %q, %q", m.Rows[0].Group, m.Rows[2].Group)
	}
	if m.Rows[0].Tier != layout.TierCritical || m.Rows[1].Tier != layout.TierNone {
		t.Errorf("tiers = %s, %s", m.Rows[0].Tier, m.Rows[1].Tier)
	}

	view := m.View()
	for _, want := range []string{"array-01", "esx-02", "90%", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNodeListModelNavigation(t *testing.T) {
	m := NewNodeListModel(tuiTopology(), layout.DefaultThresholds())

	m, _ = update(m, key("up"))
	if m.Cursor != 0 {
		t.Errorf("cursor moved above first row: %d", m.Cursor)
	}
	m, _ = update(m, key("down"), key("down"), key("down"))
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want clamped at 2", m.Cursor)
	}
	m, _ = update(m, key("k"))
	if m.Cursor != 1 {
		t.Errorf("cursor after k = %d, want 1", m.Cursor)
	}

	m.Height = 1
	m, _ = update(m, key("down"))
	if m.Offset != 1 {
		t.Errorf("offset = %d, want list scrolled to 1", m.Offset)
	}
}

func TestNodeListModelDetail(t *testing.T) {
	m := NewNodeListModel(tuiTopology(), layout.DefaultThresholds())

	m, _ = update(m, key("enter"))
	if !m.Detail {
		t.Fatal("enter did not open detail view")
	}
	view := m.View()
	for _, want := range []string{"model: FA-X70", "capacity: 90/100 TiB", "CT0.FC0", "esx-01 / b0", "not connected"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	m, cmd := update(m, key("esc"))
	if m.Detail || cmd != nil {
		t.Error("esc in detail view should return to the list")
	}
	if _, cmd := update(m, key("esc")); cmd == nil {
		t.Error("esc in list view should quit")
	}
	if _, cmd := update(m, key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestNodeListModelEmpty(t *testing.T) {
	m := NewNodeListModel(topology.Topology{}, layout.DefaultThresholds())
	m, _ = update(m, key("enter"), key("down"))
	if m.Detail {
		t.Error("enter opened detail on an empty list")
	}
	if !strings.Contains(m.View(), "(empty topology)") {
		t.Error("empty view missing placeholder")
	}
}

func TestPeerIndexLastAddressWins(t *testing.T) {
	topo := topology.Topology{
		Top:    []topology.Node{{Name: "a", Ports: []topology.Port{{Address: "dup"}}}},
		Bottom: []topology.Node{{Name: "h", Ports: []topology.Port{{Address: "dup"}, {Address: "x"}}}},
		Edges:  []topology.Edge{{Source: "x", Target: "dup"}},
	}
	peers := peerIndex(topo)
	if got := peers["x"]; len(got) != 1 || got[0].Node != "h" {
		t.Errorf("peers[x] = %+v, want the bottom node owning dup", got)
	}
}
