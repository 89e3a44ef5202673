// Package mock generates synthetic storage topologies for demos and tests.
//
// Generation is deterministic for a given [Options.Seed]: the same options
// always produce the same topology, byte for byte, so generated files can
// be checked into fixtures.
//
//	t := mock.Generate(mock.Options{Arrays: 2, Hosts: 6, Seed: 42})
package mock

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/matzehuels/topodraw/pkg/topology"
)

// Options controls the size and shape of a generated topology.
type Options struct {
	Arrays        int                     `json:"arrays"`
	Hosts         int                     `json:"hosts"`
	PortsPerArray int                     `json:"ports_per_array"`
	PortsPerHost  int                     `json:"ports_per_host"`
	Paths         int                     `json:"paths"` // array ports each host port connects to
	Protocols     []topology.ProtocolKind `json:"protocols"`
	Seed          uint64                  `json:"seed"`
}

// DefaultOptions returns a small mixed FC/iSCSI estate.
func DefaultOptions() Options {
	return Options{
		Arrays:        2,
		Hosts:         4,
		PortsPerArray: 4,
		PortsPerHost:  2,
		Paths:         2,
		Protocols:     []topology.ProtocolKind{topology.ProtocolFC, topology.ProtocolISCSI},
		Seed:          1,
	}
}

func (o *Options) setDefaults() {
	def := DefaultOptions()
	if o.Arrays < 0 {
		o.Arrays = 0
	}
	if o.Hosts < 0 {
		o.Hosts = 0
	}
	if o.PortsPerArray <= 0 {
		o.PortsPerArray = def.PortsPerArray
	}
	if o.PortsPerHost <= 0 {
		o.PortsPerHost = def.PortsPerHost
	}
	if o.Paths <= 0 {
		o.Paths = def.Paths
	}
	if len(o.Protocols) == 0 {
		o.Protocols = def.Protocols
	}
}

var (
	capacities = []float64{50, 100, 200, 500, 1000}
	models     = []string{"FlashArray X70", "FlashArray C60", "PowerStore 5200", "AFF A400"}
)

// Generate builds a topology with arrays on top and hosts on the bottom.
// Ports are assigned protocols round-robin, and every host port is linked
// to up to Paths array ports of the same protocol.
func Generate(opts Options) topology.Topology {
	opts.setDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x70d0d4a3))

	t := topology.Topology{
		Top:    make([]topology.Node, 0, opts.Arrays),
		Bottom: make([]topology.Node, 0, opts.Hosts),
	}

	for i := range opts.Arrays {
		name := fmt.Sprintf("array-%02d", i+1)
		total := capacities[rng.IntN(len(capacities))]
		used := total * (0.3 + 0.68*rng.Float64())
		n := topology.Node{
			Name: name,
			Attributes: []topology.Attribute{
				{Key: "model", Value: models[rng.IntN(len(models))]},
				{Key: "serial", Value: fmt.Sprintf("SN%08X", rng.Uint32())},
			},
			Capacity: &topology.Capacity{Used: float64(int(used*10)) / 10, Total: total, Unit: "TiB"},
		}
		for p := range opts.PortsPerArray {
			proto := opts.Protocols[p%len(opts.Protocols)]
			n.Ports = append(n.Ports, topology.Port{
				Address:  address(rng, proto, name, p, true),
				Protocol: proto,
				Label:    fmt.Sprintf("CT%d.%s%d", p%2, portPrefix(proto), p/2),
			})
		}
		t.Top = append(t.Top, n)
	}

	for i := range opts.Hosts {
		name := fmt.Sprintf("esx-%02d", i+1)
		n := topology.Node{
			Name:       name,
			Attributes: []topology.Attribute{{Key: "os", Value: "ESXi 8.0"}},
		}
		for p := range opts.PortsPerHost {
			proto := opts.Protocols[(i+p)%len(opts.Protocols)]
			n.Ports = append(n.Ports, topology.Port{
				Address:  address(rng, proto, name, p, false),
				Protocol: proto,
			})
		}
		t.Bottom = append(t.Bottom, n)
	}

	t.Edges = connect(rng, t, opts.Paths)
	return t
}

// connect links each host port to distinct array ports that speak its
// protocol, chosen at random.
func connect(rng *rand.Rand, t topology.Topology, paths int) []topology.Edge {
	targets := lo.GroupBy(lo.FlatMap(t.Top, func(n topology.Node, _ int) []topology.Port {
		return n.Ports
	}), func(p topology.Port) topology.ProtocolKind { return p.Protocol })

	var edges []topology.Edge
	for _, host := range t.Bottom {
		for _, hp := range host.Ports {
			candidates := targets[hp.Protocol]
			if len(candidates) == 0 {
				continue
			}
			order := rng.Perm(len(candidates))
			for _, idx := range order[:min(paths, len(order))] {
				edges = append(edges, topology.Edge{
					Source:   candidates[idx].Address,
					Target:   hp.Address,
					Protocol: hp.Protocol,
				})
			}
		}
	}
	return edges
}

// address renders a protocol-appropriate identifier: a WWPN for Fibre
// Channel kinds, an IQN or NQN for IP block kinds, and an IPv4 address
// for NFS.
func address(rng *rand.Rand, proto topology.ProtocolKind, node string, idx int, target bool) string {
	switch proto {
	case topology.ProtocolFC, topology.ProtocolNVMeFC:
		prefix := "21:00"
		if target {
			prefix = "52:4a"
		}
		b := make([]byte, 6)
		for i := range b {
			b[i] = byte(rng.UintN(256))
		}
		return fmt.Sprintf("%s:%02x:%02x:%02x:%02x:%02x:%02x", prefix, b[0], b[1], b[2], b[3], b[4], b[5])
	case topology.ProtocolISCSI:
		if target {
			return fmt.Sprintf("iqn.2010-06.com.purestorage:flasharray.%s.%d", node, idx)
		}
		return fmt.Sprintf("iqn.1998-01.com.vmware:%s-%08x", node, rng.Uint32())
	case topology.ProtocolNVMeTCP:
		return fmt.Sprintf("nqn.2014-08.org.nvmexpress:%s:%d", node, idx)
	default:
		return fmt.Sprintf("10.%d.%d.%d", rng.IntN(256), rng.IntN(256), 1+rng.IntN(254))
	}
}

func portPrefix(proto topology.ProtocolKind) string {
	if proto.Fabric() == "fc" {
		return "FC"
	}
	return "ETH"
}
