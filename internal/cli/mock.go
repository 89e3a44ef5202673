package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/mock"
	"github.com/matzehuels/topodraw/pkg/topology"
)

// mockCommand creates the mock command for generating synthetic topologies.
func (c *CLI) mockCommand() *cobra.Command {
	var (
		output    string
		format    string
		protocols []string
	)
	opts := mock.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Generate a synthetic topology file",
		Long: `Generate a synthetic storage topology.

Arrays get Fibre Channel and IP ports with realistic WWPN, IQN and NQN
addresses plus capacity figures; hosts get HBAs and NICs that are cabled to
array ports of the same protocol. The same --seed always yields the same file.`,
		Example: `  topodraw mock --arrays 3 --hosts 8 -o estate.yaml
  topodraw mock --protocols FC,NVMe/TCP | topodraw render -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(protocols) > 0 {
				opts.Protocols = make([]topology.ProtocolKind, len(protocols))
				for i, p := range protocols {
					opts.Protocols[i] = topology.ParseProtocol(p)
				}
			}

			t := mock.Generate(opts)

			enc := topology.Format(format)
			if format == "" {
				enc = topology.FormatFromPath(output)
				if output == "" {
					enc = topology.FormatYAML
				}
			}

			out, err := openOutput(output, c.Out)
			if err != nil {
				return fmt.Errorf("open output: %w", err)
			}
			defer out.Close()

			if err := topology.Write(out, t, enc); err != nil {
				return err
			}
			if output != "" && output != "-" {
				stats := t.Stats()
				printSuccess("Generated topology")
				printFile(output)
				printStats(stats.TopNodes+stats.BottomNodes, stats.Edges, false)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from extension, yaml for stdout)")
	cmd.Flags().IntVar(&opts.Arrays, "arrays", opts.Arrays, "number of storage arrays")
	cmd.Flags().IntVar(&opts.Hosts, "hosts", opts.Hosts, "number of hosts")
	cmd.Flags().IntVar(&opts.PortsPerArray, "array-ports", opts.PortsPerArray, "ports per array")
	cmd.Flags().IntVar(&opts.PortsPerHost, "host-ports", opts.PortsPerHost, "ports per host")
	cmd.Flags().IntVar(&opts.Paths, "paths", opts.Paths, "array ports each host port connects to")
	cmd.Flags().StringSliceVar(&protocols, "protocols", nil, "protocols to assign round-robin (default FC,iSCSI)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")

	return cmd
}
