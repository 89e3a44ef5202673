package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a computed diagram.
	LayoutKey(topologyHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output file.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes the computed diagram.
type LayoutKeyOpts struct {
	Orientation   string     `json:"orientation"`
	TopSpacing    [2]float64 `json:"top_spacing"`
	BottomSpacing [2]float64 `json:"bottom_spacing"`
	GroupGap      [2]float64 `json:"group_gap"`
	NodeSize      [2]float64 `json:"node_size"`
	PortSize      [2]float64 `json:"port_size"`
	Margin        float64    `json:"margin"`
	Thresholds    [2]float64 `json:"thresholds"`
	Legend        bool       `json:"legend"`
}

// ArtifactKeyOpts holds every option that changes a rendered file.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	EdgeLabels bool    `json:"edge_labels"`
	Scale      float64 `json:"scale,omitempty"`
	Renderer   string  `json:"renderer,omitempty"`
	PageName   string  `json:"page_name,omitempty"`
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", topologyHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
