// Package dot exports a computed layout as Graphviz DOT.
//
// The layout engine already decides every coordinate, so the DOT output pins
// each shape with pos="x,y!" and asks Graphviz for the neato engine, which
// honors pinned positions instead of running its own placement. Graphviz
// then only routes the edges.
//
//	Topology → layout.Compute() → Diagram → ToDOT() → DOT → RenderSVG() → SVG
//
// Graphviz uses a y-up coordinate system measured in points. ToDOT flips the
// y axis against the canvas height and sets inputscale=72 so that one layout
// unit maps to one point.
//
// # Usage
//
//	d := layout.Compute(t, layout.DefaultConfig())
//	src := dot.ToDOT(d, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// RenderSVG uses the WebAssembly build of Graphviz bundled with go-graphviz,
// so no system installation is needed. PNG and PDF go through
// [render.ToPNG] and [render.ToPDF] and do require librsvg.
//
// [render.ToPNG]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render#ToPNG
// [render.ToPDF]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render#ToPDF
package dot
