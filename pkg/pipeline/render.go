package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/render"
	"github.com/matzehuels/topodraw/pkg/render/dot"
	"github.com/matzehuels/topodraw/pkg/render/drawio"
	"github.com/matzehuels/topodraw/pkg/render/mermaid"
	"github.com/matzehuels/topodraw/pkg/render/svg"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// RenderDiagram serializes d in every format listed in opts.Formats.
// PNG and PDF are converted from the SVG output and need librsvg.
func RenderDiagram(ctx context.Context, d layout.Diagram, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// SVG feeds the raster formats, so render it at most once.
	var svgData []byte
	svgOnce := func() ([]byte, error) {
		if svgData != nil {
			return svgData, nil
		}
		if opts.SVGRenderer == SVGGraphviz {
			data, err := dot.RenderSVG(ctx, dot.ToDOT(d, dot.Options{EdgeLabels: opts.EdgeLabels}))
			if err != nil {
				return nil, err
			}
			svgData = data
		} else {
			svgData = svg.Render(d)
		}
		return svgData, nil
	}

	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatDrawio:
			dopts := []drawio.Option{drawio.WithPageName(opts.PageName)}
			if opts.EdgeLabels {
				dopts = append(dopts, drawio.WithEdgeLabels())
			}
			data, err = drawio.Render(d, dopts...)
		case FormatDOT:
			data = []byte(dot.ToDOT(d, dot.Options{EdgeLabels: opts.EdgeLabels}))
		case FormatMermaid:
			data = mermaid.Render(d)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatJSON:
			data, err = layout.MarshalDiagram(d)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// LoadTopology reads and validates a topology file.
func LoadTopology(path string) (topology.Topology, error) {
	t, err := topology.ReadFile(path)
	if err != nil {
		return topology.Topology{}, err
	}
	if err := topology.Validate(t); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// DecodeTopology reads and validates a topology from r, sniffing JSON
// versus YAML from the content.
func DecodeTopology(r io.Reader) (topology.Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return topology.Topology{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read topology")
	}
	t, err := topology.Unmarshal(data)
	if err != nil {
		return topology.Topology{}, err
	}
	if err := topology.Validate(t); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// LoadDiagram reads a diagram JSON file written by a previous layout run.
func LoadDiagram(path string) (layout.Diagram, error) {
	return layout.ReadDiagramFile(path)
}
