package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/topodraw/pkg/buildinfo"
	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/pipeline"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// Response headers describing a pipeline run.
const (
	HeaderCache      = "X-Topodraw-Cache"
	HeaderUnresolved = "X-Topodraw-Unresolved"
	HeaderWarnings   = "X-Topodraw-Warnings"
)

// pinger is implemented by caches backed by a remote store.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.runner.Cache.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("cache unreachable", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"version": buildinfo.Version,
				"cache":   err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	type format struct {
		Name        string `json:"name"`
		Extension   string `json:"extension"`
		ContentType string `json:"content_type"`
	}
	out := make([]format, len(pipeline.Formats))
	for i, f := range pipeline.Formats {
		out[i] = format{Name: f, Extension: pipeline.Extension(f), ContentType: pipeline.ContentType(f)}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDiagram runs the full pipeline and returns one artifact.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	opts.Formats = []string{format}

	name, err := downloadName(r.URL.Query(), format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	topo, err := s.decodeBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts.Logger = s.logger.With("request_id", RequestIDFromContext(r.Context()))
	result, err := s.runner.Execute(r.Context(), topo, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setRunHeaders(w, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit, result.Stats.Unresolved, len(result.Warnings))
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	if name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// handleLayout computes the diagram and returns it as JSON.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := opts.ValidateForLayout(); err != nil {
		writeError(w, r, err)
		return
	}

	topo, err := s.decodeBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts.Logger = s.logger.With("request_id", RequestIDFromContext(r.Context()))
	d, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), topo, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := layout.MarshalDiagram(d)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram"))
		return
	}

	setRunHeaders(w, hit, len(d.Unresolved), len(pipeline.Warnings(topo, d, opts)))
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatJSON))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (topology.Topology, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	return pipeline.DecodeTopology(r.Body)
}

// downloadName returns the attachment file name requested with ?download.
// A bare ?download uses "topology" plus the format extension.
func downloadName(q url.Values, format string) (string, error) {
	if !q.Has("download") {
		return "", nil
	}
	name := q.Get("download")
	if name == "" {
		return "topology" + pipeline.Extension(format), nil
	}
	if err := errors.ValidatePath(name); err != nil {
		return "", err
	}
	if strings.Contains(name, "/") {
		return "", errors.New(errors.ErrCodeInvalidPath, "download name must not contain directories")
	}
	return name, nil
}

func setRunHeaders(w http.ResponseWriter, hit bool, unresolved, warnings int) {
	cache := "miss"
	if hit {
		cache = "hit"
	}
	w.Header().Set(HeaderCache, cache)
	w.Header().Set(HeaderUnresolved, strconv.Itoa(unresolved))
	w.Header().Set(HeaderWarnings, strconv.Itoa(warnings))
}

// optionsFromQuery maps query parameters onto pipeline options. Unknown
// parameters are ignored; malformed values are input errors.
func optionsFromQuery(q url.Values) (pipeline.Options, error) {
	var opts pipeline.Options
	opts.Orientation = q.Get("orientation")
	opts.PageName = q.Get("page_name")
	opts.SVGRenderer = q.Get("svg_renderer")

	floats := map[string]*float64{
		"node_width":         &opts.NodeWidth,
		"node_height":        &opts.NodeHeight,
		"port_width":         &opts.PortWidth,
		"port_row_height":    &opts.PortRowHeight,
		"margin":             &opts.Margin,
		"warning_threshold":  &opts.WarningThreshold,
		"critical_threshold": &opts.CriticalThreshold,
		"scale":              &opts.Scale,
	}
	for name, dst := range floats {
		if !q.Has(name) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", name, q.Get(name))
		}
		*dst = v
	}

	spacings := map[string]*layout.Spacing{
		"top_spacing":    &opts.TopSpacing,
		"bottom_spacing": &opts.BottomSpacing,
		"group_gap":      &opts.GroupGap,
	}
	for name, dst := range spacings {
		if !q.Has(name) {
			continue
		}
		sp, err := parseSpacing(q.Get(name))
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: %v", name, err)
		}
		*dst = sp
	}

	bools := map[string]*bool{
		"legend":      &opts.Legend,
		"edge_labels": &opts.EdgeLabels,
		"refresh":     &opts.Refresh,
	}
	for name, dst := range bools {
		if !q.Has(name) {
			continue
		}
		raw := q.Get(name)
		if raw == "" {
			*dst = true
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", name, raw)
		}
		*dst = v
	}
	return opts, nil
}

func parseSpacing(raw string) (layout.Spacing, error) {
	h, v, ok := strings.Cut(raw, ",")
	if !ok {
		return layout.Spacing{}, fmt.Errorf("want horizontal,vertical, got %q", raw)
	}
	hf, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return layout.Spacing{}, err
	}
	vf, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return layout.Spacing{}, err
	}
	return layout.Spacing{Horizontal: hf, Vertical: vf}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
