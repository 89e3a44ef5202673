// Package mermaid exports a computed layout as a Mermaid flowchart.
//
// Mermaid runs its own placement, so only the structure survives: one
// subgraph per side, one nested subgraph per node group holding the node
// body and its ports, and one link per realized edge. Node bodies get one
// classDef per utilization tier; port and protocol colors are carried over
// through style and linkStyle statements.
//
// The output is meant for embedding in Markdown:
//
//	```mermaid
//	flowchart TB
//	  ...
//	```
package mermaid

import (
	"fmt"
	"strings"

	"github.com/matzehuels/topodraw/pkg/layout"
)

// Render returns the Mermaid source for d. Horizontal diagrams flow top to
// bottom, vertical diagrams left to right.
func Render(d layout.Diagram) []byte {
	dir, inner := "TB", "LR"
	if d.Orientation == layout.Vertical {
		dir, inner = "LR", "TB"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "flowchart %s\n", dir)

	var styles, classes []string
	tiers := map[layout.Tier]layout.Style{}
	for _, side := range []layout.Side{layout.SideTop, layout.SideBottom} {
		groups := groupsOn(d, side)
		if len(groups) == 0 {
			continue
		}
		caption := d.TopLabel
		if side == layout.SideBottom {
			caption = d.BottomLabel
		}
		fmt.Fprintf(&b, "  subgraph %s[%s]\n", side, quote(caption))
		fmt.Fprintf(&b, "    direction %s\n", inner)
		for _, g := range groups {
			fmt.Fprintf(&b, "    subgraph %s[%s]\n", id(string(g.ID)), quote(g.Node))
			for _, s := range d.Members(g.ID) {
				if s.Kind == layout.KindPortContainer {
					continue
				}
				fmt.Fprintf(&b, "      %s%s\n", id(string(s.ID)), node(s))
				if s.Kind == layout.KindNode {
					tiers[g.Tier] = s.Style
					classes = append(classes, fmt.Sprintf("class %s %s", id(string(s.ID)), tierClass(g.Tier)))
					continue
				}
				styles = append(styles, styleLine(id(string(s.ID)), s.Style))
			}
			b.WriteString("    end\n")
		}
		b.WriteString("  end\n")
	}

	for _, e := range d.Edges {
		link := "---"
		if e.Style.Dashed {
			link = "-.-"
		}
		fmt.Fprintf(&b, "  %s %s %s\n", id(string(e.Source)), link, id(string(e.Target)))
	}

	for _, t := range append([]layout.Tier{layout.TierNone}, layout.Tiers...) {
		if st, ok := tiers[t]; ok {
			fmt.Fprintf(&b, "  classDef %s %s\n", tierClass(t), props(st, true))
		}
	}
	for _, s := range append(classes, styles...) {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	for i, e := range d.Edges {
		fmt.Fprintf(&b, "  linkStyle %d %s\n", i, props(e.Style, false))
	}
	return []byte(b.String())
}

func tierClass(t layout.Tier) string {
	if t == layout.TierNone {
		return "tier_none"
	}
	return "tier_" + string(t)
}

func groupsOn(d layout.Diagram, side layout.Side) []layout.Group {
	var out []layout.Group
	for _, g := range d.Groups {
		if g.Side == side {
			out = append(out, g)
		}
	}
	return out
}

func node(s layout.Shape) string {
	if s.Kind == layout.KindNode && s.Style.Rounded {
		return "(" + quote(s.Label) + ")"
	}
	return "[" + quote(s.Label) + "]"
}

func styleLine(id string, st layout.Style) string {
	return fmt.Sprintf("style %s %s", id, props(st, true))
}

func props(st layout.Style, fill bool) string {
	var p []string
	if fill && st.Fill != "" {
		p = append(p, "fill:"+st.Fill)
	}
	if st.Stroke != "" {
		p = append(p, "stroke:"+st.Stroke)
	}
	if st.StrokeWidth > 0 {
		p = append(p, fmt.Sprintf("stroke-width:%gpx", st.StrokeWidth))
	}
	if fill && st.FontColor != "" {
		p = append(p, "color:"+st.FontColor)
	}
	if len(p) == 0 {
		return "stroke:#666666"
	}
	return strings.Join(p, ",")
}

// id maps a layout id onto Mermaid's identifier alphabet.
func id(s string) string {
	return strings.NewReplacer("-", "_", ".", "_", ":", "_").Replace(s)
}

// quote wraps a label in double quotes, escaping what Mermaid would
// otherwise parse.
func quote(s string) string {
	s = strings.NewReplacer(`"`, "#quot;", "\n", "<br>").Replace(s)
	return `"` + s + `"`
}
