package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/pipeline"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// renderCommand creates the render command (topology → artifacts).
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		flags      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [topology.json|topology.yaml|-]",
		Short: "Render a topology file to diagram formats",
		Long: `Render a topology file to one or more diagram formats.

This runs the complete pipeline: load and validate the topology, compute the
layout, and serialize it. The default output is an editable draw.io file next
to the input. PNG and PDF export needs rsvg-convert (librsvg) on PATH.

Both stages are cached locally; use --refresh to recompute.`,
		Example: `  topodraw render estate.yaml
  topodraw render estate.yaml -f drawio,svg --legend
  topodraw render estate.json -f mermaid -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Formats = parseFormats(formatsStr)
			opts := c.resolveOptions(cmd, flags)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats, ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &flags)
	addRenderFlags(cmd, &flags)

	return cmd
}

// runRender executes the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	topo, err := loadTopology(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := c.newSpinner(ctx, stageRender, input)
	spinner.Start()

	result, err := runner.Execute(ctx, topo, opts)
	if err != nil {
		spinner.StopWithError(err)
		return err
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}

	return c.writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		nodes:     result.Stats.Nodes,
		edges:     result.Stats.Edges - result.Stats.Unresolved,
	})
}

// loadTopology reads a topology file, or stdin when input is "-".
func loadTopology(input string) (topology.Topology, error) {
	if input == "-" {
		return pipeline.DecodeTopology(os.Stdin)
	}
	return pipeline.LoadTopology(input)
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	nodes     int
	edges     int
}

// writeArtifacts writes artifacts to files named after the input, or to
// stdout when output is "-".
func (c *CLI) writeArtifacts(p artifactWriteParams) error {
	if p.output == "-" {
		for _, format := range p.formats {
			if _, err := c.Out.Write(p.artifacts[format]); err != nil {
				return err
			}
		}
		return nil
	}

	paths := outputPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	printSuccess("Diagram complete")
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}

// outputPaths maps each format to its destination file. A single format
// with an explicit output uses it verbatim; otherwise the format extension
// is appended to the base path.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known format extension, it strips that extension.
func basePath(output, input string) string {
	if input == "-" {
		input = "topology"
	}
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.Formats {
		if pipeline.Extension(f) == ext {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or w when path is "" or "-".
func openOutput(path string, w io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{w}, nil
	}
	return os.Create(path)
}
