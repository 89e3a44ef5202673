package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagrams.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [topology.json|topology.yaml]",
		Short: "Compute a diagram layout from a topology",
		Long: `Compute a diagram layout from a topology.

The layout command validates the topology and computes every shape, edge and
group with absolute coordinates. The output is a diagram JSON file (same
format as 'render -f json') that 'visualize' turns into any output format.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.resolveOptions(cmd, flags)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &flags)

	return cmd
}

// runLayout loads the topology, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	topo, err := loadTopology(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := c.newSpinner(ctx, stageLayout, input)
	spinner.Start()

	d, cacheHit, err := runner.LayoutWithCacheInfo(ctx, topo, opts)
	if err != nil {
		spinner.StopWithError(err)
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}

	if err := layout.WriteDiagramFile(d, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	stats := topo.Stats()
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(stats.TopNodes+stats.BottomNodes, len(d.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
