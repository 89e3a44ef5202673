package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a diagram file.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		flags      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "visualize [diagram.json]",
		Short: "Render output formats from a computed layout",
		Long: `Render output formats from a computed layout.

The visualize command takes a diagram JSON file (produced by 'layout') and
serializes it. The diagram already holds every coordinate, so this step does
no layout work; edit the JSON by hand to nudge shapes before exporting.

Use 'render' as a shortcut to go directly from a topology to output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Formats = parseFormats(formatsStr)
			opts := c.resolveOptions(cmd, flags)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats, ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "re-render even when cached")
	addRenderFlags(cmd, &flags)

	return cmd
}

// runVisualize loads the diagram and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	d, err := pipeline.LoadDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := c.newSpinner(ctx, stageVisualize, input)
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError(err)
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return c.writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
		nodes:     len(d.Groups),
		edges:     len(d.Edges),
	})
}
