package layout

import "github.com/matzehuels/topodraw/pkg/topology"

// Style is a renderer-neutral description of how a shape or edge is drawn.
// Colors are CSS hex strings; empty means "renderer default".
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	FontColor   string  `json:"font_color,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Dashed      bool    `json:"dashed,omitempty"`
	Rounded     bool    `json:"rounded,omitempty"`
}

// ProtocolStyle is the pair of styles used for one protocol kind.
type ProtocolStyle struct {
	Port Style
	Edge Style
}

var protocolStyles = map[topology.ProtocolKind]ProtocolStyle{
	topology.ProtocolFC: {
		Port: Style{Fill: "#ffe6cc", Stroke: "#d79b00"},
		Edge: Style{Stroke: "#d79b00", StrokeWidth: 2},
	},
	topology.ProtocolISCSI: {
		Port: Style{Fill: "#dae8fc", Stroke: "#6c8ebf"},
		Edge: Style{Stroke: "#6c8ebf", StrokeWidth: 2, Dashed: true},
	},
	topology.ProtocolNVMeTCP: {
		Port: Style{Fill: "#e1d5e7", Stroke: "#9673a6"},
		Edge: Style{Stroke: "#9673a6", StrokeWidth: 2, Dashed: true},
	},
	topology.ProtocolNVMeFC: {
		Port: Style{Fill: "#f8cecc", Stroke: "#b85450"},
		Edge: Style{Stroke: "#b85450", StrokeWidth: 2},
	},
	topology.ProtocolNFS: {
		Port: Style{Fill: "#d5e8d4", Stroke: "#82b366"},
		Edge: Style{Stroke: "#82b366", StrokeWidth: 1, Dashed: true},
	},
}

var fallbackProtocolStyle = ProtocolStyle{
	Port: Style{Fill: "#f5f5f5", Stroke: "#666666"},
	Edge: Style{Stroke: "#666666", StrokeWidth: 1},
}

// StyleFor returns the port and edge styles for a protocol kind. Kinds
// without a dedicated entry share a neutral gray style.
func StyleFor(kind topology.ProtocolKind) ProtocolStyle {
	if s, ok := protocolStyles[kind]; ok {
		return s
	}
	return fallbackProtocolStyle
}

// portContainerStyle frames the stacked port rows.
var portContainerStyle = Style{Fill: "#ffffff", Stroke: "#999999", Dashed: true}
