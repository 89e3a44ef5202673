package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// =============================================================================
// Identifiers
// =============================================================================

// GroupID identifies a [Group] within a Diagram.
type GroupID string

// ShapeID identifies a [Shape] within a Diagram.
type ShapeID string

// EdgeID identifies an [Edge] within a Diagram.
type EdgeID string

// Side names the node group a record belongs to.
type Side string

// Node group sides.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// ShapeKind discriminates shape records.
type ShapeKind string

// Shape kinds.
const (
	KindNode          ShapeKind = "node"
	KindPortContainer ShapeKind = "port_container"
	KindPort          ShapeKind = "port"
)

// =============================================================================
// Geometry
// =============================================================================

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box. X/Y is the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether o lies within r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Union returns the smallest Rect covering r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// =============================================================================
// Records
// =============================================================================

// Group binds one node's shapes together. It has no geometry of its own.
type Group struct {
	ID    GroupID `json:"id"`
	Side  Side    `json:"side"`
	Index int     `json:"index"`
	Node  string  `json:"node"`
	Tier  Tier    `json:"tier,omitempty"`
}

// Shape is a positioned visual element. Group is nil only for shapes that
// belong to no node.
type Shape struct {
	ID     ShapeID   `json:"id"`
	Group  *GroupID  `json:"group,omitempty"`
	Kind   ShapeKind `json:"kind"`
	Label  string    `json:"label,omitempty"`
	Style  Style     `json:"style"`
	Bounds Rect      `json:"bounds"`

	// Port shapes only.
	Address  string                `json:"address,omitempty"`
	Protocol topology.ProtocolKind `json:"protocol,omitempty"`
}

// InGroup reports whether s belongs to group id.
func (s Shape) InGroup(id GroupID) bool {
	return s.Group != nil && *s.Group == id
}

// Edge is a realized connection between two port shapes. Edges are not
// members of any group.
type Edge struct {
	ID       EdgeID                `json:"id"`
	Source   ShapeID               `json:"source"`
	Target   ShapeID               `json:"target"`
	Protocol topology.ProtocolKind `json:"protocol,omitempty"`
	Label    string                `json:"label,omitempty"`
	Style    Style                 `json:"style"`
}

// Unresolved records an input edge that was not realized.
type Unresolved struct {
	Index         int           `json:"index"`
	Edge          topology.Edge `json:"edge"`
	MissingSource bool          `json:"missing_source,omitempty"`
	MissingTarget bool          `json:"missing_target,omitempty"`
}

// LegendEntryKind tells renderers whether to draw a filled swatch or a line.
type LegendEntryKind string

// Legend entry kinds.
const (
	LegendSwatch LegendEntryKind = "swatch"
	LegendLine   LegendEntryKind = "line"
)

// LegendEntry is one row of the legend.
type LegendEntry struct {
	Kind   LegendEntryKind `json:"kind"`
	Label  string          `json:"label"`
	Style  Style           `json:"style"`
	Bounds Rect            `json:"bounds"`
}

// Legend explains tier colors and protocol line styles.
type Legend struct {
	Title   string        `json:"title"`
	Bounds  Rect          `json:"bounds"`
	Entries []LegendEntry `json:"entries"`
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is the complete output of [Compute].
type Diagram struct {
	Canvas      Size        `json:"canvas"`
	Orientation Orientation `json:"orientation"`
	TopLabel    string      `json:"top_label,omitempty"`
	BottomLabel string      `json:"bottom_label,omitempty"`

	Groups []Group `json:"groups"`
	Shapes []Shape `json:"shapes"`
	Edges  []Edge  `json:"edges"`

	Legend     *Legend      `json:"legend,omitempty"`
	Unresolved []Unresolved `json:"unresolved,omitempty"`
}

// Shape looks up a shape by id.
func (d Diagram) Shape(id ShapeID) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// Members returns the shapes of a group in emission order.
func (d Diagram) Members(id GroupID) []Shape {
	var out []Shape
	for _, s := range d.Shapes {
		if s.InGroup(id) {
			out = append(out, s)
		}
	}
	return out
}

// GroupBounds returns the union of a group's member shapes.
func (d Diagram) GroupBounds(id GroupID) (Rect, bool) {
	members := d.Members(id)
	if len(members) == 0 {
		return Rect{}, false
	}
	r := members[0].Bounds
	for _, s := range members[1:] {
		r = r.Union(s.Bounds)
	}
	return r, true
}

// CountKind returns how many shapes have kind k.
func (d Diagram) CountKind(k ShapeKind) int {
	n := 0
	for _, s := range d.Shapes {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalDiagram serializes a Diagram to pretty-printed JSON bytes.
func MarshalDiagram(d Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDiagram deserializes JSON bytes into a Diagram and checks that
// every group reference and edge endpoint resolves.
func UnmarshalDiagram(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal diagram")
	}
	if d.Orientation == "" {
		d.Orientation = Horizontal
	}

	groups := make(map[GroupID]bool, len(d.Groups))
	for _, g := range d.Groups {
		groups[g.ID] = true
	}
	shapes := make(map[ShapeID]bool, len(d.Shapes))
	for _, s := range d.Shapes {
		if s.Group != nil && !groups[*s.Group] {
			return Diagram{}, errors.New(errors.ErrCodeInvalidInput, "shape %s references unknown group %s", s.ID, *s.Group)
		}
		shapes[s.ID] = true
	}
	for _, e := range d.Edges {
		if !shapes[e.Source] || !shapes[e.Target] {
			return Diagram{}, errors.New(errors.ErrCodeInvalidInput, "edge %s references unknown shape", e.ID)
		}
	}
	return d, nil
}

// WriteDiagramFile writes a Diagram to a JSON file.
func WriteDiagramFile(d Diagram, path string) error {
	data, err := MarshalDiagram(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDiagramFile reads a Diagram from a JSON file.
func ReadDiagramFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Diagram{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram file %s", path)
	}
	if err != nil {
		return Diagram{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDiagram(data)
}
