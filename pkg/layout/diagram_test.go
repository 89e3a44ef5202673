package layout

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/topodraw/pkg/errors"
)

func TestDiagramFileRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Legend = true
	d := Compute(twoByTwo(), cfg)

	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := WriteDiagramFile(d, path); err != nil {
		t.Fatalf("WriteDiagramFile: %v", err)
	}
	got, err := ReadDiagramFile(path)
	if err != nil {
		t.Fatalf("ReadDiagramFile: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Error("round trip changed the diagram")
	}
}

func TestReadDiagramFileMissing(t *testing.T) {
	_, err := ReadDiagramFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestUnmarshalDiagramRejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{`},
		{"unknown group", `{"groups":[],"shapes":[{"id":"n","group":"g-top-0","kind":"node","style":{},"bounds":{"x":0,"y":0,"width":1,"height":1}}],"edges":[]}`},
		{"unknown endpoint", `{"groups":[],"shapes":[{"id":"p","kind":"port","style":{},"bounds":{"x":0,"y":0,"width":1,"height":1}}],"edges":[{"id":"e-0","source":"p","target":"q","style":{}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalDiagram([]byte(tt.json)); err == nil {
				t.Error("UnmarshalDiagram() error = nil, want error")
			}
		})
	}
}

func TestUnmarshalDiagramDefaultsOrientation(t *testing.T) {
	d, err := UnmarshalDiagram([]byte(`{"groups":[],"shapes":[],"edges":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if d.Orientation != Horizontal {
		t.Errorf("Orientation = %q, want horizontal", d.Orientation)
	}
}

func TestGroupBounds(t *testing.T) {
	d := Compute(twoByTwo(), DefaultConfig())

	r, ok := d.GroupBounds("g-top-0")
	if !ok {
		t.Fatal("GroupBounds(g-top-0) not found")
	}
	for _, s := range d.Members("g-top-0") {
		if !r.Contains(s.Bounds) {
			t.Errorf("group bounds %+v do not contain %s %+v", r, s.ID, s.Bounds)
		}
	}
	if _, ok := d.GroupBounds("g-top-9"); ok {
		t.Error("GroupBounds(g-top-9) should not exist")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 5}
	want := Rect{X: 0, Y: -5, Width: 15, Height: 15}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if c := a.Center(); c != (Point{X: 5, Y: 5}) {
		t.Errorf("Center() = %+v, want {5 5}", c)
	}
}
