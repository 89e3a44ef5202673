// Package pkg provides the libraries behind topodraw, a layout engine for
// storage topology diagrams.
//
// # Overview
//
// A topology is two groups of nodes (storage arrays on top, the hosts that
// consume them below) plus the cabling between their ports. topodraw places
// every node, port and connection on a canvas and exports the result as an
// editable draw.io document or as DOT, Mermaid, SVG, PNG or PDF.
//
// # Architecture
//
//	topology file (JSON or YAML)
//	         ↓
//	    [topology] package (decode + validate)
//	         ↓
//	    [layout] package (deterministic placement → Diagram)
//	         ↓
//	    [render] packages (drawio, dot, mermaid, svg, png/pdf)
//
// [pipeline] ties the stages together with caching ([cache]) and hooks
// ([observability]) and is shared by the CLI and the HTTP server.
//
// # Quick Start
//
//	t, _ := topology.ReadFile("estate.yaml")
//	d := layout.Compute(t, layout.DefaultConfig())
//	data, _ := drawio.Render(d)
//	os.WriteFile("estate.drawio", data, 0o644)
//
// # Main Packages
//
// [topology] - Input model: nodes, ports, capacity and edges, with JSON and
// YAML codecs and validation.
//
// [layout] - The layout engine. Pure and deterministic: the same topology
// and config always produce the same diagram.
//
// [render] - Output formats. drawio groups every node with its ports so the
// diagram stays editable; dot pins positions for Graphviz; svg draws the
// diagram directly; PNG and PDF are converted from SVG.
//
// [report] - Capacity utilization tables using the layout's thresholds.
//
// [mock] - Seeded generator for realistic synthetic topologies.
//
// [sweep] - Concurrent TCP reachability sweep of a subnet, for checking
// host addresses before drawing them.
//
// [cache] - File, Redis and null caches for layouts and artifacts.
//
// [observability] and [observability/metrics] - Pipeline, cache and HTTP
// hooks with a Prometheus implementation.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [topology]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/topology
// [layout]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render
// [report]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/report
// [mock]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/mock
// [sweep]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/sweep
// [cache]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/observability
// [observability/metrics]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/observability/metrics
// [errors]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/pipeline
package pkg
