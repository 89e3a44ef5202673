package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topodraw/pkg/cache"
	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/observability/metrics"
	"github.com/matzehuels/topodraw/pkg/pipeline"
	"github.com/matzehuels/topodraw/pkg/topology"
)

const topoJSON = `{
  "top": [{"name": "array-01", "capacity": {"used": 90, "total": 100, "unit": "TiB"},
           "ports": [{"address": "t0", "protocol": "FC"}]}],
  "bottom": [{"name": "esx-01", "ports": [{"address": "b0", "protocol": "FC"}]}],
  "edges": [{"source": "t0", "target": "b0"}, {"source": "t0", "target": "gone"}]
}`

const topoYAML = `
top:
  - name: array-01
    ports:
      - {address: t0, protocol: iSCSI}
bottom:
  - name: esx-01
    ports:
      - {address: b0, protocol: iSCSI}
edges:
  - {source: t0, target: b0}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.New(io.Discard)
	return New(Config{
		Runner:  pipeline.NewRunner(fc, nil, logger),
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

type downCache struct{ cache.Cache }

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCacheDown(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(Config{
		Runner:  pipeline.NewRunner(downCache{cache.NewNullCache()}, nil, logger),
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
	})
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "degraded" || body["cache"] != "connection refused" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestFormats(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v1/formats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []struct {
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(pipeline.Formats) {
		t.Fatalf("formats = %d, want %d", len(got), len(pipeline.Formats))
	}
	if got[0].Name != pipeline.FormatDrawio || got[0].ContentType != "application/vnd.jgraph.mxfile" {
		t.Errorf("first format = %+v", got[0])
	}
}

func TestDiagram(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		target   string
		body     string
		wantType string
		contains string
	}{
		{"drawio default", "/v1/diagrams", topoJSON, "application/vnd.jgraph.mxfile", "<mxfile"},
		{"yaml body", "/v1/diagrams?format=drawio", topoYAML, "application/vnd.jgraph.mxfile", `id="e-0"`},
		{"dot", "/v1/diagrams?format=dot&orientation=vertical", topoJSON, "text/vnd.graphviz; charset=utf-8", "graph G {"},
		{"mermaid", "/v1/diagrams?format=mermaid", topoJSON, "text/plain; charset=utf-8", "flowchart"},
		{"svg", "/v1/diagrams?format=svg&legend", topoJSON, "image/svg+xml", "<svg"},
		{"json", "/v1/diagrams?format=json", topoJSON, "application/json", `"shapes"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestDiagramHeaders(t *testing.T) {
	s := newTestServer(t)

	first := do(t, s, http.MethodPost, "/v1/diagrams", topoJSON)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}
	if got := first.Header().Get(HeaderCache); got != "miss" {
		t.Errorf("first %s = %q, want miss", HeaderCache, got)
	}
	if got := first.Header().Get(HeaderUnresolved); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderUnresolved, got)
	}
	if got := first.Header().Get(HeaderWarnings); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderWarnings, got)
	}

	second := do(t, s, http.MethodPost, "/v1/diagrams", topoJSON)
	if got := second.Header().Get(HeaderCache); got != "hit" {
		t.Errorf("second %s = %q, want hit", HeaderCache, got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached artifact differs from the first render")
	}

	refreshed := do(t, s, http.MethodPost, "/v1/diagrams?refresh=true", topoJSON)
	if got := refreshed.Header().Get(HeaderCache); got != "miss" {
		t.Errorf("refresh %s = %q, want miss", HeaderCache, got)
	}
}

func TestDiagramDownload(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"?download", `attachment; filename="topology.drawio"`},
		{"?format=svg&download=site-a.svg", `attachment; filename="site-a.svg"`},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/v1/diagrams"+tt.query, topoJSON)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, rec.Code)
		}
		if got := rec.Header().Get("Content-Disposition"); got != tt.want {
			t.Errorf("%s: Content-Disposition = %q, want %q", tt.query, got, tt.want)
		}
	}

	for _, bad := range []string{"../etc/passwd", "out/site.drawio"} {
		rec := do(t, s, http.MethodPost, "/v1/diagrams?download="+bad, topoJSON)
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "INVALID_PATH" {
			t.Errorf("download=%s: status %d body %s", bad, rec.Code, rec.Body.String())
		}
	}
}

func TestLayout(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/layouts?top_spacing=200,40", topoJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	d, err := layout.UnmarshalDiagram(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalDiagram: %v", err)
	}
	if len(d.Edges) != 1 || len(d.Unresolved) != 1 {
		t.Errorf("edges = %d unresolved = %d, want 1 and 1", len(d.Edges), len(d.Unresolved))
	}
	topo, err := topology.Unmarshal([]byte(topoJSON))
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.DefaultConfig()
	cfg.TopSpacing = layout.Spacing{Horizontal: 200, Vertical: 40}
	if want := layout.Compute(topo, cfg); d.Canvas != want.Canvas {
		t.Errorf("canvas = %+v, want %+v", d.Canvas, want.Canvas)
	}
	if got := rec.Header().Get(HeaderWarnings); got != "1" {
		t.Errorf("%s = %q, want 1", HeaderWarnings, got)
	}
}

func TestErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bad format", http.MethodPost, "/v1/diagrams?format=gif", topoJSON, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad orientation", http.MethodPost, "/v1/diagrams?orientation=diagonal", topoJSON, http.StatusBadRequest, "INVALID_ORIENTATION"},
		{"bad number", http.MethodPost, "/v1/diagrams?margin=wide", topoJSON, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad spacing", http.MethodPost, "/v1/layouts?group_gap=10", topoJSON, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad bool", http.MethodPost, "/v1/diagrams?legend=maybe", topoJSON, http.StatusBadRequest, "INVALID_INPUT"},
		{"thresholds", http.MethodPost, "/v1/layouts?warning_threshold=0.9&critical_threshold=0.5", topoJSON, http.StatusBadRequest, "INVALID_CONFIG"},
		{"malformed body", http.MethodPost, "/v1/diagrams", `{"top": [`, http.StatusUnprocessableEntity, "INVALID_TOPOLOGY"},
		{"duplicate names", http.MethodPost, "/v1/diagrams", `{"top":[{"name":"a"},{"name":"a"}]}`, http.StatusUnprocessableEntity, "INVALID_TOPOLOGY"},
		{"unknown route", http.MethodGet, "/v2/nothing", "", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodGet, "/v1/diagrams", "", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			e := decodeError(t, rec)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if e.RequestID == "" {
				t.Error("error body missing request id")
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard), MaxBodyBytes: 16})
	rec := do(t, s, http.MethodPost, "/v1/diagrams", topoJSON)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", "")
	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	noMetrics := New(Config{Logger: log.New(io.Discard)})
	if rec := do(t, noMetrics, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without registry = %d, want 404", rec.Code)
	}
}

func TestOptionsFromQuery(t *testing.T) {
	q := map[string][]string{
		"orientation":    {"vertical"},
		"node_width":     {"200"},
		"bottom_spacing": {"10, 20"},
		"edge_labels":    {""},
		"legend":         {"false"},
		"scale":          {"3"},
		"page_name":      {"Site A"},
		"ignored":        {"x"},
	}
	opts, err := optionsFromQuery(q)
	if err != nil {
		t.Fatalf("optionsFromQuery: %v", err)
	}
	if opts.Orientation != "vertical" || opts.NodeWidth != 200 || opts.Scale != 3 || opts.PageName != "Site A" {
		t.Errorf("scalars = %+v", opts)
	}
	if opts.BottomSpacing != (layout.Spacing{Horizontal: 10, Vertical: 20}) {
		t.Errorf("bottom spacing = %+v", opts.BottomSpacing)
	}
	if !opts.EdgeLabels || opts.Legend {
		t.Errorf("edge_labels = %v legend = %v", opts.EdgeLabels, opts.Legend)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor("SOMETHING_ELSE"); got != http.StatusInternalServerError {
		t.Errorf("statusFor(unknown) = %d", got)
	}
	if got := statusFor("TIMEOUT"); got != http.StatusGatewayTimeout {
		t.Errorf("statusFor(TIMEOUT) = %d", got)
	}
}
