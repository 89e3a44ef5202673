// Package layout computes a positioned, grouped diagram from a topology.
//
// The engine is a pure function: [Compute] takes a [topology.Topology] and a
// [Config] and returns a [Diagram], an abstract record set of groups, shapes
// and edges with absolute coordinates. It performs no I/O and never fails.
// Serializers in pkg/render turn a Diagram into draw.io, DOT, Mermaid or SVG
// without touching any geometry.
//
// # Placement
//
// Nodes are arranged in two groups. In [Horizontal] orientation the top
// group forms a row at the top of the canvas and the bottom group a row
// below it, separated by the vertical group gap. [Vertical] orientation
// swaps the axes: the top group becomes the left column and the bottom
// group the right column.
//
// Each group is centered on the canvas independently. Slot i of a group
// with n nodes and spacing s is centered at
//
//	mid + (i - (n-1)/2) * s
//
// where mid is the canvas midpoint along the placement axis. The canvas
// extent along that axis is max(nTop*sTop, nBottom*sBottom) plus a margin
// on both sides.
//
// With [Config].Legend set, the legend sits in the top-left corner and the
// canvas grows by a band of the legend's size on the cross axis: above the
// rows in horizontal layouts, left of the columns in vertical ones. No
// shape overlaps the legend.
//
// Every node gets a port container on the side of its body that faces the
// other group. Ports are stacked inside the container in list order, one
// fixed-height row each.
//
// # Records
//
// Each node owns one [Group]. The node body, its port container and all of
// its port shapes carry the group's id in [Shape].Group. Groups have no
// geometry of their own: all visible geometry lives on the shapes, in the
// shared canvas coordinate space, so moving a group in an editor moves
// every child with it.
//
// Edges are top-level records that reference port shapes by id. Edges whose
// source or target address does not resolve to a placed port are left out
// of [Diagram].Edges and listed in [Diagram].Unresolved instead.
//
// # Utilization
//
// Nodes with a capacity metric are colored by [Tier]: normal at or below
// the warning threshold (70% by default), warning at or below the critical
// threshold (85%), critical above it. A value exactly on a threshold belongs
// to the lower tier.
//
// # Determinism
//
// Identical inputs produce identical Diagrams. Shape and edge ids are
// derived from positions in the input (g-top-0, n-top-0, pc-top-0,
// p-top-0-1, e-3), never from maps or clocks.
package layout
