package pipeline

import (
	"fmt"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// Warnings lists non-fatal problems with a topology and its diagram:
// edges that could not be resolved, port addresses used more than once,
// and spacing that makes shapes overlap.
func Warnings(t topology.Topology, d layout.Diagram, opts Options) []string {
	var out []string

	for _, u := range d.Unresolved {
		var missing string
		switch {
		case u.MissingSource && u.MissingTarget:
			missing = fmt.Sprintf("source %q and target %q", u.Edge.Source, u.Edge.Target)
		case u.MissingSource:
			missing = fmt.Sprintf("source %q", u.Edge.Source)
		default:
			missing = fmt.Sprintf("target %q", u.Edge.Target)
		}
		out = append(out, fmt.Sprintf("edge %d dropped: no port with %s", u.Index, missing))
	}

	for _, addr := range topology.DuplicateAddresses(t) {
		out = append(out, fmt.Sprintf("port address %q is used more than once; edges attach to the last one", addr))
	}

	spacings := []struct {
		name string
		s    layout.Spacing
	}{
		{"top spacing", opts.TopSpacing},
		{"bottom spacing", opts.BottomSpacing},
		{"group gap", opts.GroupGap},
	}
	for _, sp := range spacings {
		if sp.s.Horizontal <= 0 || sp.s.Vertical <= 0 {
			out = append(out, fmt.Sprintf("%s %v/%v is not positive; shapes will overlap", sp.name, sp.s.Horizontal, sp.s.Vertical))
		}
	}
	return out
}
