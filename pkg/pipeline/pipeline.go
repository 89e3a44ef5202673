// Package pipeline runs the load → layout → render flow shared by the CLI
// and the HTTP API.
//
// Centralizing the flow keeps defaults, caching, logging, and warnings
// identical across entry points.
//
// # Architecture
//
// The pipeline has two cacheable stages:
//
//  1. Layout: validate the topology and compute a [layout.Diagram]
//  2. Render: serialize the diagram into each requested format
//
// Each stage can be run on its own. `topodraw visualize` renders a diagram
// JSON file that an earlier `topodraw layout` produced.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, topo, pipeline.Options{
//	    Orientation: "vertical",
//	    Formats:     []string{"drawio", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("topology.drawio", result.Artifacts["drawio"], 0o644)
//
// [layout.Diagram]: https://pkg.go.dev/github.com/matzehuels/topodraw/pkg/layout#Diagram
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topodraw/pkg/cache"
	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats.
const (
	FormatDrawio  = "drawio"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatJSON    = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatDrawio, FormatDOT, FormatMermaid, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatDrawio

// DefaultScale is the PNG resolution multiplier.
const DefaultScale = 2.0

// SVG renderers. The native renderer draws the diagram directly; graphviz
// converts the DOT export with Graphviz's neato engine and pinned positions.
const (
	SVGNative   = "native"
	SVGGraphviz = "graphviz"
)

// SVGRenderers lists the accepted SVGRenderer values.
var SVGRenderers = []string{SVGNative, SVGGraphviz}

var extensions = map[string]string{
	FormatDrawio:  ".drawio",
	FormatDOT:     ".dot",
	FormatMermaid: ".mmd",
	FormatSVG:     ".svg",
	FormatPNG:     ".png",
	FormatPDF:     ".pdf",
	FormatJSON:    ".json",
}

var contentTypes = map[string]string{
	FormatDrawio:  "application/vnd.jgraph.mxfile",
	FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	FormatMermaid: "text/plain; charset=utf-8",
	FormatSVG:     "image/svg+xml",
	FormatPNG:     "image/png",
	FormatPDF:     "application/pdf",
	FormatJSON:    "application/json",
}

// Extension returns the file extension (with dot) for a format.
func Extension(format string) string {
	return extensions[format]
}

// ContentType returns the MIME type for a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateFormat checks that a format is supported. Formats are case-sensitive.
func ValidateFormat(format string) error {
	return errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", format, Formats)
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a pipeline run. Zero-valued layout
// fields take the values of [layout.DefaultConfig]; negative values are
// passed through to the engine and reported as warnings.
type Options struct {
	// Layout options
	Orientation       string         `json:"orientation,omitempty"`
	TopSpacing        layout.Spacing `json:"top_spacing,omitzero"`
	BottomSpacing     layout.Spacing `json:"bottom_spacing,omitzero"`
	GroupGap          layout.Spacing `json:"group_gap,omitzero"`
	NodeWidth         float64        `json:"node_width,omitempty"`
	NodeHeight        float64        `json:"node_height,omitempty"`
	PortWidth         float64        `json:"port_width,omitempty"`
	PortRowHeight     float64        `json:"port_row_height,omitempty"`
	Margin            float64        `json:"margin,omitempty"`
	WarningThreshold  float64        `json:"warning_threshold,omitempty"`
	CriticalThreshold float64        `json:"critical_threshold,omitempty"`
	Legend            bool           `json:"legend,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	EdgeLabels bool     `json:"edge_labels,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	PageName   string   `json:"page_name,omitempty"`

	// SVGRenderer produces svg, png and pdf output. Defaults to SVGNative.
	SVGRenderer string `json:"svg_renderer,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetLayoutDefaults fills zero-valued layout fields. Zero means unset for
// every numeric field, spacing axes included; negative spacing is passed
// through to the engine, which accepts it.
func (o *Options) SetLayoutDefaults() {
	def := layout.DefaultConfig()
	if o.Orientation == "" {
		o.Orientation = string(def.Orientation)
	}
	setSpacingDefault(&o.TopSpacing, def.TopSpacing)
	setSpacingDefault(&o.BottomSpacing, def.BottomSpacing)
	setSpacingDefault(&o.GroupGap, def.GroupGap)
	setDefault(&o.NodeWidth, def.NodeWidth)
	setDefault(&o.NodeHeight, def.NodeHeight)
	setDefault(&o.PortWidth, def.PortWidth)
	setDefault(&o.PortRowHeight, def.PortRowHeight)
	setDefault(&o.Margin, def.Margin)
	setDefault(&o.WarningThreshold, def.Thresholds.Warning)
	setDefault(&o.CriticalThreshold, def.Thresholds.Critical)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and validates enum values.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := layout.ParseOrientation(o.Orientation); err != nil {
		return err
	}
	if o.WarningThreshold > o.CriticalThreshold {
		return errors.New(errors.ErrCodeInvalidConfig,
			"warning threshold %.2f exceeds critical threshold %.2f", o.WarningThreshold, o.CriticalThreshold)
	}
	return nil
}

// SetRenderDefaults fills zero-valued render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	setDefault(&o.Scale, DefaultScale)
	if o.PageName == "" {
		o.PageName = "Topology"
	}
	if o.SVGRenderer == "" {
		o.SVGRenderer = SVGNative
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidInput, "svg renderer", o.SVGRenderer, SVGRenderers); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults prepares options for a full run. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutConfig converts the options into an engine configuration.
func (o *Options) LayoutConfig() layout.Config {
	o.SetLayoutDefaults()
	cfg := layout.DefaultConfig()
	cfg.Orientation = layout.Orientation(o.Orientation)
	cfg.TopSpacing = o.TopSpacing
	cfg.BottomSpacing = o.BottomSpacing
	cfg.GroupGap = o.GroupGap
	cfg.NodeWidth = o.NodeWidth
	cfg.NodeHeight = o.NodeHeight
	cfg.PortWidth = o.PortWidth
	cfg.PortRowHeight = o.PortRowHeight
	cfg.Margin = o.Margin
	cfg.Thresholds = layout.Thresholds{Warning: o.WarningThreshold, Critical: o.CriticalThreshold}
	cfg.Legend = o.Legend
	return cfg
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Orientation:   o.Orientation,
		TopSpacing:    [2]float64{o.TopSpacing.Horizontal, o.TopSpacing.Vertical},
		BottomSpacing: [2]float64{o.BottomSpacing.Horizontal, o.BottomSpacing.Vertical},
		GroupGap:      [2]float64{o.GroupGap.Horizontal, o.GroupGap.Vertical},
		NodeSize:      [2]float64{o.NodeWidth, o.NodeHeight},
		PortSize:      [2]float64{o.PortWidth, o.PortRowHeight},
		Margin:        o.Margin,
		Thresholds:    [2]float64{o.WarningThreshold, o.CriticalThreshold},
		Legend:        o.Legend,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, EdgeLabels: o.EdgeLabels}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		opts.Renderer = o.SVGRenderer
	case FormatDrawio:
		opts.PageName = o.PageName
	}
	return opts
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// setSpacingDefault defaults each axis on its own, so a spacing given for
// one axis keeps the default on the other.
func setSpacingDefault(s *layout.Spacing, def layout.Spacing) {
	setDefault(&s.Horizontal, def.Horizontal)
	setDefault(&s.Vertical, def.Vertical)
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the validated input.
	Topology topology.Topology

	// TopologyHash is the content hash of the normalized topology.
	TopologyHash string

	// Diagram is the computed layout.
	Diagram layout.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings are non-fatal findings such as dropped edges.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Ports      int
	Edges      int
	Unresolved int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}
