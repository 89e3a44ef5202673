package drawio

import "encoding/xml"

// MxFile is the top-level element of a .drawio document.
type MxFile struct {
	XMLName  xml.Name  `xml:"mxfile"`
	Host     string    `xml:"host,attr,omitempty"`
	Agent    string    `xml:"agent,attr,omitempty"`
	Version  string    `xml:"version,attr,omitempty"`
	Diagrams []Diagram `xml:"diagram"`
}

// Diagram is one page of a document.
type Diagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Model MxGraphModel `xml:"mxGraphModel"`
}

// MxGraphModel holds the page settings and the cell tree.
type MxGraphModel struct {
	Dx         int     `xml:"dx,attr"`
	Dy         int     `xml:"dy,attr"`
	Grid       int     `xml:"grid,attr"`
	GridSize   int     `xml:"gridSize,attr,omitempty"`
	Guides     int     `xml:"guides,attr"`
	Tooltips   int     `xml:"tooltips,attr"`
	Connect    int     `xml:"connect,attr"`
	Arrows     int     `xml:"arrows,attr"`
	Fold       int     `xml:"fold,attr"`
	Page       int     `xml:"page,attr"`
	PageScale  float64 `xml:"pageScale,attr"`
	PageWidth  int     `xml:"pageWidth,attr"`
	PageHeight int     `xml:"pageHeight,attr"`
	Background string  `xml:"background,attr,omitempty"`
	Root       Root    `xml:"root"`
}

// Root is the flat list of cells. Hierarchy is expressed through Parent.
type Root struct {
	MxCell []MxCell `xml:"mxCell"`
}

// MxCell is a vertex, an edge, or one of the two structural root cells.
type MxCell struct {
	ID          string    `xml:"id,attr"`
	Parent      string    `xml:"parent,attr,omitempty"`
	Value       string    `xml:"value,attr,omitempty"`
	Style       string    `xml:"style,attr,omitempty"`
	Vertex      string    `xml:"vertex,attr,omitempty"`
	Edge        string    `xml:"edge,attr,omitempty"`
	Source      string    `xml:"source,attr,omitempty"`
	Target      string    `xml:"target,attr,omitempty"`
	Connectable string    `xml:"connectable,attr,omitempty"`
	Geometry    *Geometry `xml:"mxGeometry,omitempty"`
}

// Geometry positions a cell relative to its parent.
type Geometry struct {
	X        float64 `xml:"x,attr,omitempty"`
	Y        float64 `xml:"y,attr,omitempty"`
	Width    float64 `xml:"width,attr,omitempty"`
	Height   float64 `xml:"height,attr,omitempty"`
	Relative string  `xml:"relative,attr,omitempty"`
	As       string  `xml:"as,attr,omitempty"`
	Points   []Point `xml:"mxPoint,omitempty"`
}

// Point is an edge terminal or waypoint.
type Point struct {
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
	As string  `xml:"as,attr,omitempty"`
}
