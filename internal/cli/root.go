package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The persistent pre-run applies --verbose and loads the config file before
// any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "topodraw draws storage topologies as editable diagrams",
		Long: `topodraw lays out storage arrays and the hosts that consume them as two
facing rows of grouped nodes, wires their ports together, and exports the
result as an editable draw.io diagram or as DOT, Mermaid, SVG, PNG or PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/topodraw/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.mockCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
