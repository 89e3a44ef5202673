// Package render holds the output serializers for computed layouts.
//
// # Overview
//
// The layout engine in [github.com/matzehuels/topodraw/pkg/layout] produces
// a renderer-neutral [layout.Diagram]. The subpackages turn that record into
// concrete files:
//
//   - [drawio]: editable .drawio documents (the primary target)
//   - [dot]: Graphviz DOT with pinned positions, plus SVG via go-graphviz
//   - [mermaid]: Mermaid flowcharts for Markdown embedding
//   - [svg]: a direct SVG drawing of the diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	svgBytes := svg.Render(d)
//	pdf, err := render.ToPDF(ctx, svgBytes)
//	png, err := render.ToPNG(ctx, svgBytes, 2.0)  // 2x scale
//
// [layout.Diagram]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/layout#Diagram
// [drawio]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render/drawio
// [dot]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render/dot
// [mermaid]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render/mermaid
// [svg]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/render/svg
package render
