package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// Config is the optional TOML configuration file.
//
//	[layout]
//	orientation = "vertical"
//	legend = true
//	group_gap = { horizontal = 400, vertical = 300 }
//
//	[layout.thresholds]
//	warning = 0.75
//	critical = 0.9
//
//	[render]
//	formats = ["drawio", "svg"]
//
//	[server]
//	addr = ":8080"
//	redis = "localhost:6379"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds layout defaults. Zero values keep the engine defaults.
type LayoutConfig struct {
	Orientation   string            `toml:"orientation" validate:"omitempty,oneof=horizontal vertical"`
	TopSpacing    layout.Spacing    `toml:"top_spacing"`
	BottomSpacing layout.Spacing    `toml:"bottom_spacing"`
	GroupGap      layout.Spacing    `toml:"group_gap"`
	NodeWidth     float64           `toml:"node_width" validate:"gte=0"`
	NodeHeight    float64           `toml:"node_height" validate:"gte=0"`
	PortWidth     float64           `toml:"port_width" validate:"gte=0"`
	PortRowHeight float64           `toml:"port_row_height" validate:"gte=0"`
	Margin        float64           `toml:"margin" validate:"gte=0"`
	Thresholds    layout.Thresholds `toml:"thresholds"`
	Legend        bool              `toml:"legend"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats    []string `toml:"formats" validate:"dive,oneof=drawio dot mermaid svg png pdf json"`
	EdgeLabels bool     `toml:"edge_labels"`
	Scale      float64  `toml:"scale" validate:"gte=0"`
	PageName   string   `toml:"page_name"`
	SVG        string   `toml:"svg_renderer" validate:"omitempty,oneof=native graphviz"`
}

// ServerConfig holds `serve` defaults.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	Redis      string `toml:"redis"`
	CacheScope string `toml:"cache_scope"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ReadConfig decodes and validates a config file. Unknown keys are errors.
func ReadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := configValidator.Struct(cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	th := cfg.Layout.Thresholds
	if th.Warning < 0 || th.Warning > 1 || th.Critical < 0 || th.Critical > 1 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "config %s: thresholds must be within 0..1", path)
	}
	return cfg, nil
}

// loadConfig reads the --config file, or the default path when it exists.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		def, err := defaultConfigPath()
		if err != nil {
			return nil
		}
		path = def
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return nil
	}
	cfg, err := ReadConfig(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.config = cfg
	return nil
}

// Options converts the config into pipeline options.
func (cfg Config) Options() pipeline.Options {
	l, r := cfg.Layout, cfg.Render
	return pipeline.Options{
		Orientation:       l.Orientation,
		TopSpacing:        l.TopSpacing,
		BottomSpacing:     l.BottomSpacing,
		GroupGap:          l.GroupGap,
		NodeWidth:         l.NodeWidth,
		NodeHeight:        l.NodeHeight,
		PortWidth:         l.PortWidth,
		PortRowHeight:     l.PortRowHeight,
		Margin:            l.Margin,
		WarningThreshold:  l.Thresholds.Warning,
		CriticalThreshold: l.Thresholds.Critical,
		Legend:            l.Legend,
		Formats:           r.Formats,
		EdgeLabels:        r.EdgeLabels,
		Scale:             r.Scale,
		PageName:          r.PageName,
		SVGRenderer:       r.SVG,
	}
}

// =============================================================================
// Flags
// =============================================================================

// spacingValue parses "H,V" or "HxV" into a layout.Spacing.
type spacingValue struct{ s *layout.Spacing }

func (v spacingValue) String() string {
	if v.s == nil || *v.s == (layout.Spacing{}) {
		return ""
	}
	return fmt.Sprintf("%g,%g", v.s.Horizontal, v.s.Vertical)
}

func (v spacingValue) Set(raw string) error {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == 'x' })
	if len(parts) != 2 {
		return fmt.Errorf("want HORIZONTAL,VERTICAL, got %q", raw)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return err
	}
	vv, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return err
	}
	*v.s = layout.Spacing{Horizontal: h, Vertical: vv}
	return nil
}

func (spacingValue) Type() string { return "h,v" }

// addLayoutFlags registers the layout knobs on cmd, writing into o.
func addLayoutFlags(cmd *cobra.Command, o *pipeline.Options) {
	f := cmd.Flags()
	f.StringVar(&o.Orientation, "orientation", "", "horizontal (default) or vertical")
	f.Var(spacingValue{&o.TopSpacing}, "top-spacing", "spacing between top nodes (default 220,160)")
	f.Var(spacingValue{&o.BottomSpacing}, "bottom-spacing", "spacing between bottom nodes (default 220,160)")
	f.Var(spacingValue{&o.GroupGap}, "group-gap", "distance between the two groups (default 480,360)")
	f.Float64Var(&o.NodeWidth, "node-width", 0, "node body width (default 160)")
	f.Float64Var(&o.NodeHeight, "node-height", 0, "node body height (default 80)")
	f.Float64Var(&o.PortWidth, "port-width", 0, "port width (default 140)")
	f.Float64Var(&o.PortRowHeight, "port-height", 0, "port row height (default 20)")
	f.Float64Var(&o.Margin, "margin", 0, "canvas margin (default 40)")
	f.Float64Var(&o.WarningThreshold, "warn", 0, "warning utilization ratio (default 0.70)")
	f.Float64Var(&o.CriticalThreshold, "crit", 0, "critical utilization ratio (default 0.85)")
	f.BoolVar(&o.Legend, "legend", false, "draw a legend")
}

// addRenderFlags registers the render knobs on cmd, writing into o.
// The --format flag is registered by the caller.
func addRenderFlags(cmd *cobra.Command, o *pipeline.Options) {
	f := cmd.Flags()
	f.BoolVar(&o.EdgeLabels, "edge-labels", false, "print the protocol on every edge")
	f.Float64Var(&o.Scale, "scale", 0, "PNG scale factor (default 2)")
	f.StringVar(&o.PageName, "page-name", "", "draw.io page name (default Topology)")
	f.StringVar(&o.SVGRenderer, "svg-renderer", "", "native (default) or graphviz, used for svg, png and pdf")
}

// resolveOptions starts from the config file and overlays every flag the
// user set explicitly.
func (c *CLI) resolveOptions(cmd *cobra.Command, flags pipeline.Options) pipeline.Options {
	opts := c.config.Options()
	changed := cmd.Flags().Changed

	overlay := []struct {
		name  string
		apply func()
	}{
		{"orientation", func() { opts.Orientation = flags.Orientation }},
		{"top-spacing", func() { opts.TopSpacing = flags.TopSpacing }},
		{"bottom-spacing", func() { opts.BottomSpacing = flags.BottomSpacing }},
		{"group-gap", func() { opts.GroupGap = flags.GroupGap }},
		{"node-width", func() { opts.NodeWidth = flags.NodeWidth }},
		{"node-height", func() { opts.NodeHeight = flags.NodeHeight }},
		{"port-width", func() { opts.PortWidth = flags.PortWidth }},
		{"port-height", func() { opts.PortRowHeight = flags.PortRowHeight }},
		{"margin", func() { opts.Margin = flags.Margin }},
		{"warn", func() { opts.WarningThreshold = flags.WarningThreshold }},
		{"crit", func() { opts.CriticalThreshold = flags.CriticalThreshold }},
		{"legend", func() { opts.Legend = flags.Legend }},
		{"edge-labels", func() { opts.EdgeLabels = flags.EdgeLabels }},
		{"scale", func() { opts.Scale = flags.Scale }},
		{"page-name", func() { opts.PageName = flags.PageName }},
		{"svg-renderer", func() { opts.SVGRenderer = flags.SVGRenderer }},
	}
	for _, o := range overlay {
		if changed(o.name) {
			o.apply()
		}
	}
	if len(flags.Formats) > 0 {
		opts.Formats = flags.Formats
	}
	opts.Refresh = flags.Refresh
	opts.Logger = c.Logger
	return opts
}
