// Package svg draws a computed layout directly as SVG.
//
// Unlike the DOT export, no external layout engine is involved: every
// rectangle and line is emitted at the coordinates the layout engine chose,
// so the SVG matches the .drawio document one to one. Edges are drawn first
// and run between port centers, which leaves them tucked under the port
// shapes.
//
// The output can be converted to PNG or PDF with [render.ToPNG] and
// [render.ToPDF].
//
// [render.ToPNG]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render#ToPNG
// [render.ToPDF]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render#ToPDF
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/topodraw/pkg/layout"
)

const (
	nodeFontSize   = 11.0
	portFontSize   = 9.0
	legendFontSize = 11.0
	lineHeight     = 1.3
	cornerRadius   = 8.0
)

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	font       string
	background string
}

// WithFont sets the CSS font-family for all text.
func WithFont(family string) Option { return func(r *renderer) { r.font = family } }

// WithBackground fills the canvas with color. Empty means transparent.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// Render returns an SVG drawing of d.
func Render(d layout.Diagram, opts ...Option) []byte {
	r := renderer{font: "Helvetica, Arial, sans-serif", background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := d.Canvas.Width, d.Canvas.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		w, h, w, h, escape(r.font))
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range d.Edges {
		renderEdge(&buf, d, e)
	}
	buf.WriteString("  </g>\n")

	for _, g := range d.Groups {
		fmt.Fprintf(&buf, `  <g id="%s" class="group %s">`+"\n", escape(string(g.ID)), g.Tier)
		for _, s := range d.Members(g.ID) {
			renderShape(&buf, s)
		}
		buf.WriteString("  </g>\n")
	}

	if d.Legend != nil {
		renderLegend(&buf, *d.Legend)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdge(buf *bytes.Buffer, d layout.Diagram, e layout.Edge) {
	src, okSrc := d.Shape(e.Source)
	dst, okDst := d.Shape(e.Target)
	if !okSrc || !okDst {
		return
	}
	a, b := src.Bounds.Center(), dst.Bounds.Center()
	fmt.Fprintf(buf, `    <line id="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>`+"\n",
		escape(string(e.ID)), a.X, a.Y, b.X, b.Y, strokeAttrs(e.Style, 1))
}

func renderShape(buf *bytes.Buffer, s layout.Shape) {
	rx := 0.0
	if s.Style.Rounded {
		rx = cornerRadius
	}
	fill := s.Style.Fill
	if fill == "" {
		fill = "none"
	}
	fmt.Fprintf(buf, `    <rect id="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"%s/>`+"\n",
		escape(string(s.ID)), s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height, rx, escape(fill), strokeAttrs(s.Style, 1))

	switch s.Kind {
	case layout.KindNode:
		renderLines(buf, strings.Split(s.Label, "\n"), s.Bounds.Center().X, s.Bounds.Y+nodeFontSize+6, nodeFontSize, "middle", s.Style.FontColor)
	case layout.KindPort:
		y := s.Bounds.Y + s.Bounds.Height/2 + portFontSize/3
		renderLines(buf, []string{s.Label}, s.Bounds.X+4, y, portFontSize, "start", s.Style.FontColor)
	}
}

// renderLines writes one text element with a tspan per line. The first
// line of a multi-line label is bold.
func renderLines(buf *bytes.Buffer, lines []string, x, y, size float64, anchor, color string) {
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return
	}
	if color == "" {
		color = "#333333"
	}
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" text-anchor="%s" fill="%s">`, x, y, size, anchor, escape(color))
	for i, l := range lines {
		dy := 0.0
		if i > 0 {
			dy = size * lineHeight
		}
		weight := ""
		if i == 0 && len(lines) > 1 {
			weight = ` font-weight="bold"`
		}
		fmt.Fprintf(buf, `<tspan x="%.1f" dy="%.1f"%s>%s</tspan>`, x, dy, weight, escape(l))
	}
	buf.WriteString("</text>\n")
}

func renderLegend(buf *bytes.Buffer, l layout.Legend) {
	b := l.Bounds
	buf.WriteString(`  <g class="legend">` + "\n")
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff" stroke="#cccccc"/>`+"\n",
		b.X, b.Y, b.Width, b.Height)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="bold" fill="#333333">%s</text>`+"\n",
		b.X+8, b.Y+18, legendFontSize+1, escape(l.Title))

	for _, e := range l.Entries {
		r := e.Bounds
		switch e.Kind {
		case layout.LegendLine:
			y := r.Y + r.Height/2
			fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>`+"\n",
				r.X, y, r.X+3*r.Width, y, strokeAttrs(e.Style, 2))
		default:
			fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2" fill="%s"%s/>`+"\n",
				r.X, r.Y, r.Width, r.Height, escape(e.Style.Fill), strokeAttrs(e.Style, 1))
		}
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" fill="#333333">%s</text>`+"\n",
			r.X+4*r.Width, r.Y+r.Height-2, legendFontSize, escape(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func strokeAttrs(st layout.Style, defaultWidth float64) string {
	stroke := st.Stroke
	if stroke == "" {
		stroke = "#666666"
	}
	width := st.StrokeWidth
	if width <= 0 {
		width = defaultWidth
	}
	attrs := fmt.Sprintf(` stroke="%s" stroke-width="%g"`, escape(stroke), width)
	if st.Dashed {
		attrs += ` stroke-dasharray="6,4"`
	}
	return attrs
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
