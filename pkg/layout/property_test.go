package layout

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/topodraw/pkg/topology"
)

// randomTopology builds a topology with nTop/nBottom nodes, each carrying
// ports ports, plus one edge per top port pointing at a bottom port (or at
// a missing address when the bottom group has no ports).
func randomTopology(nTop, nBottom, ports int) topology.Topology {
	t := topology.Topology{
		Top:    makeNodes("a", nTop, ports, topology.ProtocolFC),
		Bottom: makeNodes("h", nBottom, ports, topology.ProtocolISCSI),
	}
	for i := 0; i < nTop; i++ {
		for j := 0; j < ports; j++ {
			target := "missing"
			if nBottom > 0 {
				target = fmt.Sprintf("h-%d-%d", (i+j)%nBottom, j)
			}
			t.Edges = append(t.Edges, topology.Edge{Source: fmt.Sprintf("a-%d-%d", i, j), Target: target})
		}
	}
	return t
}

func propertyConfig(vertical bool, topStep, bottomStep float64) Config {
	cfg := DefaultConfig()
	if vertical {
		cfg.Orientation = Vertical
	}
	cfg.TopSpacing = Spacing{Horizontal: topStep, Vertical: topStep}
	cfg.BottomSpacing = Spacing{Horizontal: bottomStep, Vertical: bottomStep}
	return cfg
}

// TestLayoutInvariants checks properties that must hold for any input.
func TestLayoutInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("each group is centered on the canvas", prop.ForAll(
		func(nTop, nBottom, ports int, topStep, bottomStep float64, vertical bool) bool {
			d := Compute(randomTopology(nTop, nBottom, ports), propertyConfig(vertical, topStep, bottomStep))
			for _, side := range []Side{SideTop, SideBottom} {
				got, want, ok := groupMidpoint(d, side)
				if ok && !approx(got, want) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
		gen.IntRange(0, 4),
		gen.Float64Range(10, 400),
		gen.Float64Range(10, 400),
		gen.Bool(),
	))

	properties.Property("ports stay inside their container", prop.ForAll(
		func(nTop, nBottom, ports int, vertical bool) bool {
			d := Compute(randomTopology(nTop, nBottom, ports), propertyConfig(vertical, 200, 200))
			containers := map[GroupID]Rect{}
			for _, s := range d.Shapes {
				if s.Kind == KindPortContainer {
					containers[*s.Group] = s.Bounds
				}
			}
			for _, s := range d.Shapes {
				if s.Kind != KindPort {
					continue
				}
				c, ok := containers[*s.Group]
				if !ok || !c.Contains(s.Bounds) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(0, 6),
		gen.Bool(),
	))

	properties.Property("edges are a filter over input edges", prop.ForAll(
		func(nTop, nBottom, ports int) bool {
			topo := randomTopology(nTop, nBottom, ports)
			d := Compute(topo, DefaultConfig())
			if len(d.Edges)+len(d.Unresolved) != len(topo.Edges) {
				return false
			}
			for _, e := range d.Edges {
				src, okSrc := d.Shape(e.Source)
				dst, okDst := d.Shape(e.Target)
				if !okSrc || !okDst || src.Kind != KindPort || dst.Kind != KindPort {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(0, 4),
	))

	properties.Property("shape counts follow the input", prop.ForAll(
		func(nTop, nBottom, ports int) bool {
			d := Compute(randomTopology(nTop, nBottom, ports), DefaultConfig())
			nodes := nTop + nBottom
			containers := 0
			if ports > 0 {
				containers = nodes
			}
			return len(d.Groups) == nodes &&
				d.CountKind(KindNode) == nodes &&
				d.CountKind(KindPortContainer) == containers &&
				d.CountKind(KindPort) == nodes*ports
		},
		gen.IntRange(0, 10),
		gen.IntRange(0, 10),
		gen.IntRange(0, 5),
	))

	properties.Property("the legend never covers a shape", prop.ForAll(
		func(nTop, nBottom, ports int, topStep, bottomStep float64, vertical bool) bool {
			cfg := propertyConfig(vertical, topStep, bottomStep)
			cfg.Legend = true
			d := Compute(randomTopology(nTop, nBottom, ports), cfg)
			for _, s := range d.Shapes {
				if overlaps(d.Legend.Bounds, s.Bounds) {
					return false
				}
			}
			for _, side := range []Side{SideTop, SideBottom} {
				if got, want, ok := groupMidpoint(d, side); ok && !approx(got, want) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(0, 4),
		gen.Float64Range(10, 400),
		gen.Float64Range(10, 400),
		gen.Bool(),
	))

	properties.Property("output is deterministic", prop.ForAll(
		func(nTop, nBottom, ports int, vertical bool) bool {
			topo := randomTopology(nTop, nBottom, ports)
			cfg := propertyConfig(vertical, 150, 250)
			cfg.Legend = true
			a, errA := MarshalDiagram(Compute(topo, cfg))
			b, errB := MarshalDiagram(Compute(topo, cfg))
			return errA == nil && errB == nil && bytes.Equal(a, b)
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(0, 4),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
