// Package drawio serializes a layout.Diagram as a draw.io (diagrams.net)
// document.
//
// Every layout group becomes a draw.io "group" cell with zero geometry
// directly under the default layer. Node bodies, port containers and ports
// are vertices whose parent is their group, so selecting and dragging a
// group in the editor moves the node together with its ports. Because the
// group sits at the origin, child coordinates are the absolute canvas
// coordinates computed by the layout engine.
//
// Edges are children of the default layer and reference port cells by id
// without fixed exit or entry points, so draw.io re-routes them when a
// group is moved.
//
// The document's diagram id is a name-based (SHA-1) UUID of the page
// content, so identical diagrams serialize to identical bytes.
package drawio

import (
	"encoding/xml"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/topodraw/pkg/layout"
)

const (
	rootCell  = "0"
	layerCell = "1"
	host      = "topodraw"
)

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	pageName   string
	edgeLabels bool
	gridSize   int
}

// WithPageName sets the page (tab) name. Defaults to "Topology".
func WithPageName(name string) Option {
	return func(r *renderer) { r.pageName = name }
}

// WithEdgeLabels prints the protocol on every edge.
func WithEdgeLabels() Option {
	return func(r *renderer) { r.edgeLabels = true }
}

// Render encodes d as an uncompressed .drawio XML document.
func Render(d layout.Diagram, opts ...Option) ([]byte, error) {
	r := &renderer{pageName: "Topology", gridSize: 10}
	for _, opt := range opts {
		opt(r)
	}

	model := r.model(d)
	body, err := xml.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("encode graph model: %w", err)
	}

	doc := MxFile{
		Host:  host,
		Agent: host,
		Diagrams: []Diagram{{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, body).String(),
			Name:  r.pageName,
			Model: model,
		}},
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode drawio document: %w", err)
	}
	return []byte(xml.Header + string(out) + "\n"), nil
}

// Model builds the mxGraphModel for d without wrapping it in a document.
func Model(d layout.Diagram, opts ...Option) MxGraphModel {
	r := &renderer{pageName: "Topology", gridSize: 10}
	for _, opt := range opts {
		opt(r)
	}
	return r.model(d)
}

func (r *renderer) model(d layout.Diagram) MxGraphModel {
	m := MxGraphModel{
		Dx:         int(math.Ceil(d.Canvas.Width)),
		Dy:         int(math.Ceil(d.Canvas.Height)),
		Grid:       1,
		GridSize:   r.gridSize,
		Guides:     1,
		Tooltips:   1,
		Connect:    1,
		Arrows:     1,
		Fold:       1,
		Page:       1,
		PageScale:  1,
		PageWidth:  int(math.Ceil(d.Canvas.Width)),
		PageHeight: int(math.Ceil(d.Canvas.Height)),
		Root: Root{
			MxCell: []MxCell{
				{ID: rootCell},
				{ID: layerCell, Parent: rootCell},
			},
		},
	}

	cells := &m.Root.MxCell
	if d.Legend != nil {
		*cells = append(*cells, legendCells(*d.Legend)...)
	}

	for _, g := range d.Groups {
		*cells = append(*cells, MxCell{
			ID:          string(g.ID),
			Parent:      layerCell,
			Style:       "group",
			Vertex:      "1",
			Connectable: "0",
			Geometry:    &Geometry{As: "geometry"},
		})
	}

	for _, s := range d.Shapes {
		parent := layerCell
		if s.Group != nil {
			parent = string(*s.Group)
		}
		*cells = append(*cells, MxCell{
			ID:          string(s.ID),
			Parent:      parent,
			Value:       htmlLabel(s.Label),
			Style:       shapeStyle(s),
			Vertex:      "1",
			Connectable: connectable(s.Kind),
			Geometry: &Geometry{
				X:      s.Bounds.X,
				Y:      s.Bounds.Y,
				Width:  s.Bounds.Width,
				Height: s.Bounds.Height,
				As:     "geometry",
			},
		})
	}

	for _, e := range d.Edges {
		cell := MxCell{
			ID:       string(e.ID),
			Parent:   layerCell,
			Style:    edgeStyle(e.Style),
			Edge:     "1",
			Source:   string(e.Source),
			Target:   string(e.Target),
			Geometry: &Geometry{Relative: "1", As: "geometry"},
		}
		if r.edgeLabels {
			cell.Value = html.EscapeString(e.Label)
		}
		*cells = append(*cells, cell)
	}

	return m
}

// legendCells emits the legend as a group container whose children are
// positioned relative to it.
func legendCells(l layout.Legend) []MxCell {
	const id = "legend"
	cells := []MxCell{
		{
			ID:     id,
			Parent: layerCell,
			Style:  "group",
			Vertex: "1",
			Geometry: &Geometry{
				X: l.Bounds.X, Y: l.Bounds.Y,
				Width: l.Bounds.Width, Height: l.Bounds.Height,
				As: "geometry",
			},
		},
		{
			ID:     id + "-bg",
			Parent: id,
			Style:  "rounded=0;whiteSpace=wrap;html=1;fillColor=#ffffff;strokeColor=#cccccc;",
			Vertex: "1",
			Geometry: &Geometry{
				Width: l.Bounds.Width, Height: l.Bounds.Height,
				As: "geometry",
			},
		},
		{
			ID:     id + "-title",
			Parent: id,
			Value:  html.EscapeString(l.Title),
			Style:  "text;html=1;strokeColor=none;fillColor=none;align=left;verticalAlign=middle;fontSize=12;fontStyle=1;",
			Vertex: "1",
			Geometry: &Geometry{
				X: 8, Y: 4, Width: l.Bounds.Width - 16, Height: 20,
				As: "geometry",
			},
		},
	}

	for i, e := range l.Entries {
		x, y := e.Bounds.X-l.Bounds.X, e.Bounds.Y-l.Bounds.Y
		entryID := fmt.Sprintf("%s-%d", id, i)
		switch e.Kind {
		case layout.LegendLine:
			cells = append(cells, MxCell{
				ID:     entryID,
				Parent: id,
				Style:  edgeStyle(e.Style),
				Edge:   "1",
				Geometry: &Geometry{
					Relative: "1",
					As:       "geometry",
					Points: []Point{
						{X: x, Y: y + e.Bounds.Height/2, As: "sourcePoint"},
						{X: x + 3*e.Bounds.Width, Y: y + e.Bounds.Height/2, As: "targetPoint"},
					},
				},
			})
		default:
			cells = append(cells, MxCell{
				ID:     entryID,
				Parent: id,
				Style:  vertexStyle("rounded=1;whiteSpace=wrap;html=1;", e.Style),
				Vertex: "1",
				Geometry: &Geometry{
					X: x, Y: y, Width: e.Bounds.Width, Height: e.Bounds.Height,
					As: "geometry",
				},
			})
		}
		cells = append(cells, MxCell{
			ID:     entryID + "-label",
			Parent: id,
			Value:  html.EscapeString(e.Label),
			Style:  "text;html=1;strokeColor=none;fillColor=none;align=left;verticalAlign=middle;fontSize=11;",
			Vertex: "1",
			Geometry: &Geometry{
				X: x + 4*e.Bounds.Width, Y: y - 3, Width: l.Bounds.Width - x - 4*e.Bounds.Width - 8, Height: 20,
				As: "geometry",
			},
		})
	}
	return cells
}

// shapeStyle picks the base style for a shape kind and appends the
// layout's colors.
func shapeStyle(s layout.Shape) string {
	switch s.Kind {
	case layout.KindNode:
		return vertexStyle("shape=rectangle;whiteSpace=wrap;html=1;verticalAlign=top;spacingTop=4;fontSize=11;", s.Style)
	case layout.KindPortContainer:
		return vertexStyle("shape=rectangle;html=1;", s.Style)
	case layout.KindPort:
		return vertexStyle("shape=rectangle;html=1;align=left;spacingLeft=4;fontSize=9;", s.Style)
	default:
		return vertexStyle("html=1;", s.Style)
	}
}

func vertexStyle(base string, st layout.Style) string {
	var b strings.Builder
	b.WriteString(base)
	if st.Rounded {
		b.WriteString("rounded=1;")
	} else if !strings.Contains(base, "rounded=") {
		b.WriteString("rounded=0;")
	}
	writeColors(&b, st)
	return b.String()
}

func edgeStyle(st layout.Style) string {
	var b strings.Builder
	b.WriteString("endArrow=none;html=1;edgeStyle=none;")
	writeColors(&b, st)
	return b.String()
}

func writeColors(b *strings.Builder, st layout.Style) {
	if st.Fill != "" {
		b.WriteString("fillColor=" + st.Fill + ";")
	}
	if st.Stroke != "" {
		b.WriteString("strokeColor=" + st.Stroke + ";")
	}
	if st.FontColor != "" {
		b.WriteString("fontColor=" + st.FontColor + ";")
	}
	if st.StrokeWidth > 0 {
		b.WriteString("strokeWidth=" + strconv.FormatFloat(st.StrokeWidth, 'f', -1, 64) + ";")
	}
	if st.Dashed {
		b.WriteString("dashed=1;")
	}
}

// htmlLabel escapes a multi-line label for an html=1 cell.
func htmlLabel(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return strings.Join(lines, "<br>")
}

// connectable marks only ports as edge terminals.
func connectable(k layout.ShapeKind) string {
	if k == layout.KindPort {
		return ""
	}
	return "0"
}
