package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/topodraw/pkg/topology"
)

// Compute lays out t according to cfg.
//
// Compute is pure and deterministic. It never fails: edges that reference
// unknown port addresses are reported in Diagram.Unresolved instead of
// being emitted. When two ports share an address, edges resolve to the one
// placed last (top group before bottom group, nodes and ports in list
// order).
func Compute(t topology.Topology, cfg Config) Diagram {
	cfg = cfg.resolved()
	e := &engine{
		cfg:      cfg,
		byAddr:   make(map[string]ShapeID),
		protocol: make(map[string]topology.ProtocolKind),
	}
	return e.run(t)
}

// engine holds the per-call state of one Compute invocation.
type engine struct {
	cfg Config

	// byAddr resolves port addresses to the port shape placed for them.
	byAddr map[string]ShapeID
	// protocol remembers each resolved port's protocol for edges that omit one.
	protocol map[string]topology.ProtocolKind

	d Diagram
}

func (e *engine) run(t topology.Topology) Diagram {
	o := e.cfg.Orientation
	top, bottom := t.Captions()
	e.d = Diagram{
		Orientation: o,
		TopLabel:    top,
		BottomLabel: bottom,
		Groups:      []Group{},
		Shapes:      []Shape{},
		Edges:       []Edge{},
	}

	topStep := e.cfg.TopSpacing.along(o)
	bottomStep := e.cfg.BottomSpacing.along(o)
	gap := e.cfg.GroupGap.across(o)
	margin := e.cfg.Margin

	along := max(float64(len(t.Top))*topStep, float64(len(t.Bottom))*bottomStep, 0)
	across := 0.0
	if !t.IsEmpty() {
		across = max(gap+e.cfg.bodyAcross(), 0)
	}
	if o == Vertical {
		e.d.Canvas = Size{Width: across + 2*margin, Height: along + 2*margin}
	} else {
		e.d.Canvas = Size{Width: along + 2*margin, Height: across + 2*margin}
	}
	e.d.Canvas.Width = max(e.d.Canvas.Width, 0)
	e.d.Canvas.Height = max(e.d.Canvas.Height, 0)

	mid := margin + along/2
	e.placeGroup(SideTop, t.Top, topStep, mid, margin)
	e.placeGroup(SideBottom, t.Bottom, bottomStep, mid, margin+gap)

	e.realizeEdges(t.Edges)

	if e.cfg.Legend {
		e.d.Legend = e.buildLegend()
		e.reserveLegend(e.d.Legend.Bounds)
	}
	return e.d
}

// reserveLegend adds a band for the legend in front of the groups on the
// cross axis and moves every shape past it. When the legend is longer than
// the canvas along the placement axis the canvas grows to fit and shapes
// move by half the growth, so groups stay centered.
func (e *engine) reserveLegend(l Rect) {
	c := &e.d.Canvas
	var dx, dy float64
	if e.cfg.Orientation == Vertical {
		dx = l.Width
		c.Width += dx
		if l.Height > c.Height {
			dy = (l.Height - c.Height) / 2
			c.Height = l.Height
		}
	} else {
		dy = l.Height
		c.Height += dy
		if l.Width > c.Width {
			dx = (l.Width - c.Width) / 2
			c.Width = l.Width
		}
	}
	for i := range e.d.Shapes {
		e.d.Shapes[i].Bounds.X += dx
		e.d.Shapes[i].Bounds.Y += dy
	}
}

// placeGroup emits the group, body, port container and port records for
// every node of one side. Slot centers are symmetric around mid; crossPos
// is the body's offset on the other axis.
func (e *engine) placeGroup(side Side, nodes []topology.Node, step, mid, crossPos float64) {
	n := len(nodes)
	for i, node := range nodes {
		center := mid + (float64(i)-float64(n-1)/2)*step
		gid := GroupID(fmt.Sprintf("g-%s-%d", side, i))
		tier := Classify(node.Capacity, e.cfg.Thresholds)

		e.d.Groups = append(e.d.Groups, Group{
			ID:    gid,
			Side:  side,
			Index: i,
			Node:  node.Name,
			Tier:  tier,
		})

		body := e.bodyRect(center, crossPos)
		e.d.Shapes = append(e.d.Shapes, Shape{
			ID:     ShapeID(fmt.Sprintf("n-%s-%d", side, i)),
			Group:  groupRef(gid),
			Kind:   KindNode,
			Label:  nodeLabel(node),
			Style:  e.cfg.Palette.For(tier),
			Bounds: body,
		})

		if len(node.Ports) == 0 {
			continue
		}

		container := e.containerRect(side, body, len(node.Ports))
		e.d.Shapes = append(e.d.Shapes, Shape{
			ID:     ShapeID(fmt.Sprintf("pc-%s-%d", side, i)),
			Group:  groupRef(gid),
			Kind:   KindPortContainer,
			Style:  portContainerStyle,
			Bounds: container,
		})

		for j, port := range node.Ports {
			id := ShapeID(fmt.Sprintf("p-%s-%d-%d", side, i, j))
			e.d.Shapes = append(e.d.Shapes, Shape{
				ID:    id,
				Group: groupRef(gid),
				Kind:  KindPort,
				Label: port.DisplayLabel(),
				Style: StyleFor(port.Protocol).Port,
				Bounds: Rect{
					X:      container.X,
					Y:      container.Y + float64(j)*e.cfg.PortRowHeight,
					Width:  e.cfg.PortWidth,
					Height: e.cfg.PortRowHeight,
				},
				Address:  port.Address,
				Protocol: port.Protocol,
			})
			e.byAddr[port.Address] = id
			e.protocol[port.Address] = port.Protocol
		}
	}
}

// bodyRect positions a node body whose center along the placement axis is
// center and whose near edge on the other axis is at crossPos.
func (e *engine) bodyRect(center, crossPos float64) Rect {
	w, h := e.cfg.NodeWidth, e.cfg.NodeHeight
	if e.cfg.Orientation == Vertical {
		return Rect{X: crossPos, Y: center - e.cfg.bodyAlong()/2, Width: w, Height: h}
	}
	return Rect{X: center - e.cfg.bodyAlong()/2, Y: crossPos, Width: w, Height: h}
}

// containerRect places the port container against the body side that faces
// the other group: below/right of top-group bodies, above/left of
// bottom-group bodies.
func (e *engine) containerRect(side Side, body Rect, ports int) Rect {
	w := e.cfg.PortWidth
	h := float64(ports) * e.cfg.PortRowHeight

	if e.cfg.Orientation == Vertical {
		r := Rect{Y: body.Y, Width: w, Height: h}
		if side == SideTop {
			r.X = body.X + body.Width
		} else {
			r.X = body.X - w
		}
		return r
	}

	r := Rect{X: body.X + (body.Width-w)/2, Width: w, Height: h}
	if side == SideTop {
		r.Y = body.Y + body.Height
	} else {
		r.Y = body.Y - h
	}
	return r
}

// realizeEdges keeps only edges whose endpoints both resolved.
func (e *engine) realizeEdges(edges []topology.Edge) {
	for k, edge := range edges {
		src, okSrc := e.byAddr[edge.Source]
		dst, okDst := e.byAddr[edge.Target]
		if !okSrc || !okDst {
			e.d.Unresolved = append(e.d.Unresolved, Unresolved{
				Index:         k,
				Edge:          edge,
				MissingSource: !okSrc,
				MissingTarget: !okDst,
			})
			continue
		}

		proto := edge.Protocol
		if proto == "" {
			proto = e.protocol[edge.Source]
		}
		e.d.Edges = append(e.d.Edges, Edge{
			ID:       EdgeID(fmt.Sprintf("e-%d", k)),
			Source:   src,
			Target:   dst,
			Protocol: proto,
			Label:    string(proto),
			Style:    StyleFor(proto).Edge,
		})
	}
}

// Legend geometry.
const (
	legendWidth     = 180.0
	legendRowHeight = 20.0
	legendPadding   = 8.0
	legendSwatch    = 14.0
)

// buildLegend lists the utilization tiers followed by every protocol that
// appears on a placed port or realized edge. The legend is anchored at the
// top-left canvas corner; reserveLegend keeps shapes clear of it.
func (e *engine) buildLegend() *Legend {
	l := &Legend{Title: "Legend"}

	row := func(i int) Rect {
		return Rect{
			X:      legendPadding,
			Y:      legendPadding + float64(i+1)*legendRowHeight + (legendRowHeight-legendSwatch)/2,
			Width:  legendSwatch,
			Height: legendSwatch,
		}
	}

	for _, t := range Tiers {
		l.Entries = append(l.Entries, LegendEntry{
			Kind:   LegendSwatch,
			Label:  TierLabel(t, e.cfg.Thresholds),
			Style:  e.cfg.Palette.For(t),
			Bounds: row(len(l.Entries)),
		})
	}
	for _, p := range e.usedProtocols() {
		l.Entries = append(l.Entries, LegendEntry{
			Kind:   LegendLine,
			Label:  string(p),
			Style:  StyleFor(p).Edge,
			Bounds: row(len(l.Entries)),
		})
	}

	l.Bounds = Rect{
		X:      0,
		Y:      0,
		Width:  legendWidth,
		Height: float64(len(l.Entries)+1)*legendRowHeight + 2*legendPadding,
	}
	return l
}

// usedProtocols returns known protocols in their canonical order, then any
// other protocol sorted by name.
func (e *engine) usedProtocols() []topology.ProtocolKind {
	seen := make(map[topology.ProtocolKind]bool)
	for _, s := range e.d.Shapes {
		if s.Kind == KindPort && s.Protocol != "" {
			seen[s.Protocol] = true
		}
	}
	for _, edge := range e.d.Edges {
		if edge.Protocol != "" {
			seen[edge.Protocol] = true
		}
	}

	var out, other []topology.ProtocolKind
	for _, p := range topology.KnownProtocols {
		if seen[p] {
			out = append(out, p)
			delete(seen, p)
		}
	}
	for p := range seen {
		other = append(other, p)
	}
	slices.Sort(other)
	return append(out, other...)
}

// nodeLabel renders the node name, its display attributes and, when
// present, its utilization, one per line.
func nodeLabel(n topology.Node) string {
	lines := []string{n.Name}
	for _, a := range n.Attributes {
		lines = append(lines, a.Key+": "+a.Value)
	}
	if n.Capacity != nil && n.Capacity.Total > 0 {
		lines = append(lines, utilizationLine(*n.Capacity))
	}
	return strings.Join(lines, "\n")
}

func groupRef(id GroupID) *GroupID { return &id }
