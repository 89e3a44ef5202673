package cli

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/pkg/errors"
	"github.com/matzehuels/topodraw/pkg/sweep"
)

// sweepCommand creates the sweep command for subnet discovery.
func (c *CLI) sweepCommand() *cobra.Command {
	var (
		opts   sweep.Options
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "sweep [cidr]",
		Short: "Find reachable hosts in a subnet",
		Long: `Dial every host address of a subnet with TCP connects.

A host is reported up when any listed port accepts or refuses the connection.
Use it to check which array and host management addresses answer before
drawing a topology.`,
		Example: `  topodraw sweep 10.20.30.0/24
  topodraw sweep 192.168.1.0/28 --ports 22,443 --timeout 200ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, err := netip.ParsePrefix(args[0])
			if err != nil {
				if addr, aerr := netip.ParseAddr(args[0]); aerr == nil {
					prefix = netip.PrefixFrom(addr, addr.BitLen())
				} else {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %q", args[0])
				}
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			logger.Debug("sweeping", "prefix", prefix, "ports", opts.Ports, "timeout", opts.Timeout)

			spinner := c.newSpinner(ctx, stageSweep, prefix.String())
			spinner.Start()
			p := newProgress(logger)
			results, err := sweep.Run(ctx, prefix, opts)
			if err != nil {
				spinner.StopWithError(err)
				return err
			}
			spinner.Stop()
			alive := sweep.Alive(results)
			p.done(fmt.Sprintf("Swept %d addresses", len(results)))

			shown := alive
			if all {
				shown = results
			}
			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(shown)
			}

			for _, r := range shown {
				if r.Alive {
					printKeyValue(r.Addr.String(), fmt.Sprintf("up  tcp/%d  %s", r.Port, r.Latency.Round(time.Microsecond)))
				} else {
					printKeyValue(r.Addr.String(), StyleDim.Render("down"))
				}
			}
			if len(shown) > 0 {
				printNewline()
			}
			if len(alive) == 0 {
				printWarning("No host answered on tcp/%v", opts.Ports)
				return nil
			}
			printInfo("%d of %d hosts up", len(alive), len(results))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&opts.Ports, "ports", sweep.DefaultPorts, "TCP ports to dial")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", sweep.DefaultTimeout, "per-address dial timeout")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", sweep.DefaultConcurrency, "parallel dials")
	cmd.Flags().BoolVar(&all, "all", false, "list hosts that are down too")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}
