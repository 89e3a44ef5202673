package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/pipeline"
	"github.com/matzehuels/topodraw/pkg/report"
)

// reportCommand creates the report command for capacity utilization.
func (c *CLI) reportCommand() *cobra.Command {
	var (
		asJSON bool
		flags  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "report [topology.json|topology.yaml]",
		Short: "Print a capacity utilization report",
		Long: `Print the capacity utilization of every node that reports it.

Nodes are classified with the same warning and critical thresholds that color
node bodies in diagrams, so the table and the drawing always agree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.resolveOptions(cmd, flags)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			topo, err := loadTopology(args[0])
			if err != nil {
				return err
			}

			r := report.Build(topo, layout.Thresholds{
				Warning:  opts.WarningThreshold,
				Critical: opts.CriticalThreshold,
			})
			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			return report.Render(c.Out, r)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().Float64Var(&flags.WarningThreshold, "warn", 0, "warning utilization ratio (default 0.70)")
	cmd.Flags().Float64Var(&flags.CriticalThreshold, "crit", 0, "critical utilization ratio (default 0.85)")

	return cmd
}
