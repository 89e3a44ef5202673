package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topodraw/pkg/layout"
)

// Options configures DOT export.
type Options struct {
	// EdgeLabels prints the protocol on every edge.
	EdgeLabels bool
	// Splines selects the Graphviz edge routing mode. Defaults to "line".
	Splines string
}

// ToDOT converts a diagram to an undirected Graphviz graph with pinned
// positions. Shapes belonging to one node group are emitted inside a
// cluster subgraph named after the group.
func ToDOT(d layout.Diagram, opts Options) string {
	splines := opts.Splines
	if splines == "" {
		splines = "line"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	fmt.Fprintf(&buf, "  splines=%s;\n", splines)
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=box, fixedsize=true, fontname=\"Helvetica\", fontsize=10, margin=0];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n")
	buf.WriteString("\n")

	for _, g := range d.Groups {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+string(g.ID))
		for _, s := range d.Members(g.ID) {
			fmt.Fprintf(&buf, "    %q [%s];\n", string(s.ID), strings.Join(shapeAttrs(s, d.Canvas.Height), ", "))
		}
		buf.WriteString("  }\n")
	}

	if d.Legend != nil {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  legend [%s];\n", strings.Join(legendAttrs(*d.Legend, d.Canvas.Height), ", "))
	}

	if len(d.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range d.Edges {
		attrs := styleAttrs(e.Style, false)
		if opts.EdgeLabels {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", string(e.Source), string(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func shapeAttrs(s layout.Shape, height float64) []string {
	c := s.Bounds.Center()
	attrs := []string{
		fmt.Sprintf("label=%q", s.Label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(height-c.Y)),
		fmt.Sprintf("width=%s", num(s.Bounds.Width/72)),
		fmt.Sprintf("height=%s", num(s.Bounds.Height/72)),
	}
	if s.Kind == layout.KindPort {
		attrs = append(attrs, "fontsize=8")
	}
	return append(attrs, styleAttrs(s.Style, true)...)
}

func legendAttrs(l layout.Legend, height float64) []string {
	lines := []string{l.Title}
	for _, e := range l.Entries {
		lines = append(lines, e.Label)
	}
	c := l.Bounds.Center()
	return []string{
		"shape=note",
		fmt.Sprintf("label=%q", strings.Join(lines, "\n")),
		fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(height-c.Y)),
		fmt.Sprintf("width=%s", num(l.Bounds.Width/72)),
		fmt.Sprintf("height=%s", num(l.Bounds.Height/72)),
	}
}

func styleAttrs(st layout.Style, filled bool) []string {
	var styles []string
	if filled {
		styles = append(styles, "filled")
		if st.Rounded {
			styles = append(styles, "rounded")
		}
	}
	if st.Dashed {
		styles = append(styles, "dashed")
	}

	var attrs []string
	if len(styles) > 0 {
		attrs = append(attrs, fmt.Sprintf("style=%q", strings.Join(styles, ",")))
	}
	if filled && st.Fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", st.Fill))
	}
	if st.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", st.Stroke))
	}
	if st.FontColor != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", st.FontColor))
	}
	if st.StrokeWidth > 0 {
		attrs = append(attrs, "penwidth="+num(st.StrokeWidth))
	}
	return attrs
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so browsers scale the drawing to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
