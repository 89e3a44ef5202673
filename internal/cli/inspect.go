package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/layout"
	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// inspectCommand creates the interactive topology browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "inspect [topology.json|topology.yaml]",
		Short: "Browse a topology interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.resolveOptions(cmd, flags)
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			topo, err := loadTopology(args[0])
			if err != nil {
				return err
			}

			model := NewNodeListModel(topo, layout.Thresholds{
				Warning:  opts.WarningThreshold,
				Critical: opts.CriticalThreshold,
			})
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Float64Var(&flags.WarningThreshold, "warn", 0, "warning utilization ratio (default 0.70)")
	cmd.Flags().Float64Var(&flags.CriticalThreshold, "crit", 0, "critical utilization ratio (default 0.85)")

	return cmd
}
