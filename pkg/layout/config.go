package layout

import (
	"github.com/matzehuels/topodraw/pkg/errors"
)

// Orientation selects the axis along which the two node groups are laid out.
type Orientation string

// Supported orientations.
const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Orientations lists every supported orientation.
var Orientations = []string{string(Horizontal), string(Vertical)}

// ParseOrientation validates s. An empty string yields [Horizontal].
func ParseOrientation(s string) (Orientation, error) {
	if s == "" {
		return Horizontal, nil
	}
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidOrientation, "orientation", s, Orientations); err != nil {
		return "", err
	}
	return Orientation(s), nil
}

// Spacing holds distances along each canvas axis.
type Spacing struct {
	Horizontal float64 `json:"horizontal" toml:"horizontal"`
	Vertical   float64 `json:"vertical" toml:"vertical"`
}

// along returns the component used to advance between nodes of a group.
func (s Spacing) along(o Orientation) float64 {
	if o == Vertical {
		return s.Vertical
	}
	return s.Horizontal
}

// across returns the component used to separate the two groups.
func (s Spacing) across(o Orientation) float64 {
	if o == Vertical {
		return s.Horizontal
	}
	return s.Vertical
}

// Thresholds are the utilization ratios (0..1) at which a node moves to the
// next tier. A ratio equal to a threshold stays in the lower tier.
type Thresholds struct {
	Warning  float64 `json:"warning" toml:"warning"`
	Critical float64 `json:"critical" toml:"critical"`
}

// DefaultThresholds returns the 70% / 85% tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 0.70, Critical: 0.85}
}

// Palette maps utilization tiers to node body styles.
type Palette struct {
	None     Style `json:"none"`
	Normal   Style `json:"normal"`
	Warning  Style `json:"warning"`
	Critical Style `json:"critical"`
}

// For returns the style of a tier.
func (p Palette) For(t Tier) Style {
	switch t {
	case TierNormal:
		return p.Normal
	case TierWarning:
		return p.Warning
	case TierCritical:
		return p.Critical
	default:
		return p.None
	}
}

// DefaultPalette returns the green/amber/red tier colors.
func DefaultPalette() Palette {
	return Palette{
		None:     Style{Fill: "#f5f5f5", Stroke: "#666666", FontColor: "#333333", Rounded: true},
		Normal:   Style{Fill: "#d5e8d4", Stroke: "#82b366", FontColor: "#000000", Rounded: true},
		Warning:  Style{Fill: "#fff2cc", Stroke: "#d6b656", FontColor: "#000000", Rounded: true},
		Critical: Style{Fill: "#f8cecc", Stroke: "#b85450", FontColor: "#000000", Rounded: true},
	}
}

// Config controls placement and styling.
//
// Spacing values are used as given. Zero or negative spacing is accepted
// and produces overlapping shapes; rejecting such values is left to callers.
type Config struct {
	Orientation Orientation `json:"orientation"`

	TopSpacing    Spacing `json:"top_spacing"`
	BottomSpacing Spacing `json:"bottom_spacing"`
	GroupGap      Spacing `json:"group_gap"`

	NodeWidth     float64 `json:"node_width"`
	NodeHeight    float64 `json:"node_height"`
	PortWidth     float64 `json:"port_width"`
	PortRowHeight float64 `json:"port_row_height"`
	Margin        float64 `json:"margin"`

	Thresholds Thresholds `json:"thresholds"`
	Palette    Palette    `json:"palette"`

	Legend bool `json:"legend,omitempty"`
}

// Default dimensions.
const (
	DefaultNodeWidth     = 160.0
	DefaultNodeHeight    = 80.0
	DefaultPortWidth     = 140.0
	DefaultPortRowHeight = 20.0
	DefaultMargin        = 40.0
)

// DefaultConfig returns a horizontal layout sized for typical arrays with a
// handful of ports each.
func DefaultConfig() Config {
	return Config{
		Orientation:   Horizontal,
		TopSpacing:    Spacing{Horizontal: 220, Vertical: 160},
		BottomSpacing: Spacing{Horizontal: 220, Vertical: 160},
		GroupGap:      Spacing{Horizontal: 480, Vertical: 360},
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		PortWidth:     DefaultPortWidth,
		PortRowHeight: DefaultPortRowHeight,
		Margin:        DefaultMargin,
		Thresholds:    DefaultThresholds(),
		Palette:       DefaultPalette(),
	}
}

// resolved fills the fields that have no meaningful zero value: an empty
// orientation, unset thresholds and an unset palette. Geometry is never
// touched.
func (c Config) resolved() Config {
	if c.Orientation != Vertical {
		c.Orientation = Horizontal
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = DefaultThresholds()
	}
	if c.Palette == (Palette{}) {
		c.Palette = DefaultPalette()
	}
	return c
}

// bodyAlong is the node body extent along the placement axis.
func (c Config) bodyAlong() float64 {
	if c.Orientation == Vertical {
		return c.NodeHeight
	}
	return c.NodeWidth
}

// bodyAcross is the node body extent perpendicular to the placement axis.
func (c Config) bodyAcross() float64 {
	if c.Orientation == Vertical {
		return c.NodeWidth
	}
	return c.NodeHeight
}
