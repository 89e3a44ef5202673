package topology

import (
	"slices"

	"github.com/samber/lo"
)

// Default captions for the two node groups.
const (
	DefaultTopLabel    = "Arrays"
	DefaultBottomLabel = "Hosts"
)

// =============================================================================
// Topology
// =============================================================================

// Topology is the complete input to the layout engine.
type Topology struct {
	TopLabel    string `json:"top_label,omitempty" yaml:"top_label,omitempty"`
	BottomLabel string `json:"bottom_label,omitempty" yaml:"bottom_label,omitempty"`
	Top         []Node `json:"top" yaml:"top" validate:"dive"`
	Bottom      []Node `json:"bottom" yaml:"bottom" validate:"dive"`
	Edges       []Edge `json:"edges,omitempty" yaml:"edges,omitempty" validate:"dive"`
}

// Captions returns the top and bottom group captions with defaults applied.
func (t Topology) Captions() (top, bottom string) {
	top, bottom = t.TopLabel, t.BottomLabel
	if top == "" {
		top = DefaultTopLabel
	}
	if bottom == "" {
		bottom = DefaultBottomLabel
	}
	return top, bottom
}

// Nodes returns every node, top group first.
func (t Topology) Nodes() []Node {
	return slices.Concat(t.Top, t.Bottom)
}

// Ports returns every port in placement order (top group first, then
// bottom group, each in node order and port order).
func (t Topology) Ports() []Port {
	return lo.FlatMap(t.Nodes(), func(n Node, _ int) []Port { return n.Ports })
}

// IsEmpty reports whether the topology has no nodes in either group.
func (t Topology) IsEmpty() bool {
	return len(t.Top) == 0 && len(t.Bottom) == 0
}

// Stats summarizes a topology.
type Stats struct {
	TopNodes    int
	BottomNodes int
	Ports       int
	Edges       int
	ByProtocol  map[ProtocolKind]int
}

// Stats counts nodes, ports and edges.
func (t Topology) Stats() Stats {
	ports := t.Ports()
	return Stats{
		TopNodes:    len(t.Top),
		BottomNodes: len(t.Bottom),
		Ports:       len(ports),
		Edges:       len(t.Edges),
		ByProtocol:  lo.CountValuesBy(ports, func(p Port) ProtocolKind { return p.Protocol }),
	}
}

// Protocols returns the distinct protocol kinds used by ports and edges,
// sorted by name.
func (t Topology) Protocols() []ProtocolKind {
	kinds := lo.Map(t.Ports(), func(p Port, _ int) ProtocolKind { return p.Protocol })
	kinds = append(kinds, lo.Map(t.Edges, func(e Edge, _ int) ProtocolKind { return e.Protocol })...)
	kinds = lo.Uniq(lo.Compact(kinds))
	slices.Sort(kinds)
	return kinds
}

// =============================================================================
// Node
// =============================================================================

// Node is a storage array or host.
type Node struct {
	Name       string      `json:"name" yaml:"name" validate:"required"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty" validate:"dive"`
	Capacity   *Capacity   `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Ports      []Port      `json:"ports,omitempty" yaml:"ports,omitempty" validate:"dive"`
}

// Attribute is an ordered display key/value pair shown in the node label.
type Attribute struct {
	Key   string `json:"key" yaml:"key" validate:"required"`
	Value string `json:"value" yaml:"value"`
}

// Capacity is the utilization metric of a node. Used and Total share a unit;
// Unit is only used for display.
type Capacity struct {
	Used  float64 `json:"used" yaml:"used" validate:"gte=0"`
	Total float64 `json:"total" yaml:"total" validate:"gte=0"`
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Ratio returns Used/Total, or 0 when Total is not positive.
func (c Capacity) Ratio() float64 {
	if c.Total <= 0 {
		return 0
	}
	return c.Used / c.Total
}

// Free returns the unused capacity, never negative.
func (c Capacity) Free() float64 {
	return max(c.Total-c.Used, 0)
}

// =============================================================================
// Port & Edge
// =============================================================================

// Port is a network or fabric endpoint on a node. Address must be unique
// across the whole topology (WWPN, IQN, NQN or any other identifier).
type Port struct {
	Address  string       `json:"address" yaml:"address" validate:"required"`
	Protocol ProtocolKind `json:"protocol" yaml:"protocol"`
	Label    string       `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the address.
func (p Port) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Address
}

// Edge connects two ports by address.
type Edge struct {
	Source   string       `json:"source" yaml:"source" validate:"required"`
	Target   string       `json:"target" yaml:"target" validate:"required"`
	Protocol ProtocolKind `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}
