package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topodraw/pkg/errors"
)

// Format is a topology file encoding.
type Format string

// Supported topology file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Read decodes a topology from r.
func Read(r io.Reader, format Format) (Topology, error) {
	var t Topology
	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&t); err != nil {
			return Topology{}, errors.Wrap(errors.ErrCodeInvalidTopology, err, "decode json topology")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil && err != io.EOF {
			return Topology{}, errors.Wrap(errors.ErrCodeInvalidTopology, err, "decode yaml topology")
		}
	default:
		return Topology{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported topology format: %q", format)
	}
	t.normalize()
	return t, nil
}

// Unmarshal decodes a topology from bytes, sniffing JSON vs YAML.
func Unmarshal(data []byte) (Topology, error) {
	format := FormatYAML
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		format = FormatJSON
	}
	return Read(bytes.NewReader(data), format)
}

// Write encodes t to w. JSON output is indented with two spaces.
func Write(w io.Writer, t Topology, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported topology format: %q", format)
	}
}

// Marshal encodes t as indented JSON.
func Marshal(t Topology) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ReadFile reads a topology from a JSON or YAML file.
func ReadFile(path string) (Topology, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Topology{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "topology file %s", path)
	}
	if err != nil {
		return Topology{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// WriteFile writes a topology to a JSON or YAML file.
func WriteFile(t Topology, path string) error {
	var buf bytes.Buffer
	if err := Write(&buf, t, FormatFromPath(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// normalize canonicalizes protocol spellings after decoding.
func (t *Topology) normalize() {
	for _, nodes := range [][]Node{t.Top, t.Bottom} {
		for i := range nodes {
			for j := range nodes[i].Ports {
				nodes[i].Ports[j].Protocol = ParseProtocol(string(nodes[i].Ports[j].Protocol))
			}
		}
	}
	for i := range t.Edges {
		t.Edges[i].Protocol = ParseProtocol(string(t.Edges[i].Protocol))
	}
}
