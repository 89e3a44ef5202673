package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/topodraw/pkg/layout"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty keeps defaults", "", nil},
		{"single format", "drawio", []string{"drawio"}},
		{"multiple formats", "drawio,svg,png", []string{"drawio", "svg", "png"}},
		{"spaces trimmed", "dot, mermaid", []string{"dot", "mermaid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from input", "", "site/estate.yaml", "site/estate"},
		{"from diagram input", "", "estate.layout.json", "estate"},
		{"stdin input", "", "-", "topology"},
		{"known extension stripped", "out/site.drawio", "estate.yaml", "out/site"},
		{"unknown extension kept", "out/site.v2", "estate.yaml", "out/site.v2"},
		{"bare output", "diagram", "estate.yaml", "diagram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	single := outputPaths([]string{"svg"}, "estate.yaml", "custom.image")
	if single["svg"] != "custom.image" {
		t.Errorf("single format with output = %q, want verbatim output", single["svg"])
	}

	multi := outputPaths([]string{"drawio", "mermaid", "png"}, "estate.yaml", "")
	want := map[string]string{
		"drawio":  "estate.drawio",
		"mermaid": "estate.mmd",
		"png":     "estate.png",
	}
	for f, p := range want {
		if multi[f] != p {
			t.Errorf("outputPaths()[%s] = %q, want %q", f, multi[f], p)
		}
	}
}

func TestSpacingValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    layout.Spacing
		wantErr bool
	}{
		{"200,150", layout.Spacing{Horizontal: 200, Vertical: 150}, false},
		{"200x150", layout.Spacing{Horizontal: 200, Vertical: 150}, false},
		{" 10 , 20 ", layout.Spacing{Horizontal: 10, Vertical: 20}, false},
		{"-5,0", layout.Spacing{Horizontal: -5, Vertical: 0}, false},
		{"200", layout.Spacing{}, true},
		{"a,b", layout.Spacing{}, true},
		{"1,2,3", layout.Spacing{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s layout.Spacing
			err := spacingValue{&s}.Set(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && s != tt.want {
				t.Errorf("Set(%q) = %+v, want %+v", tt.raw, s, tt.want)
			}
		})
	}

	s := layout.Spacing{Horizontal: 220, Vertical: 160}
	if got := (spacingValue{&s}).String(); got != "220,160" {
		t.Errorf("String() = %q", got)
	}
}

func TestOpenOutput(t *testing.T) {
	var buf bytes.Buffer
	w, err := openOutput("-", &buf)
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("hello"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello" {
		t.Errorf("stdout output = %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := openOutput(path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("file"))
	f.Close()
	if data, _ := os.ReadFile(path); string(data) != "file" {
		t.Errorf("file output = %q", data)
	}
}

func TestRenderToStdout(t *testing.T) {
	c, out := newTestCLI(t)
	input := filepath.Join(t.TempDir(), "estate.yaml")
	if err := run(t, c, "mock", "--arrays", "1", "--hosts", "1", "-o", input); err != nil {
		t.Fatalf("mock: %v", err)
	}

	out.Reset()
	if err := run(t, c, "render", input, "-f", "mermaid", "-o", "-"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("flowchart ")) {
		t.Errorf("render to stdout = %q", out.String())
	}

	if err := run(t, c, "render", input, "-f", "gif"); err == nil {
		t.Error("unknown format should fail")
	}
}
