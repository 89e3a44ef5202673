// Package topology defines the input model for topodraw: two groups of nodes
// (storage arrays on top, hosts on the bottom), their ports, and the
// port-to-port connections between them.
//
// # Model
//
// A [Topology] holds two ordered node lists and an edge list. Every [Node]
// carries an ordered list of [Port] values; each port has a protocol
// ([ProtocolKind]) and an address that is unique across the whole topology.
// Edges join two ports by address:
//
//	t := topology.Topology{
//	    Top: []topology.Node{{
//	        Name:  "array-01",
//	        Ports: []topology.Port{{Address: "50:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC}},
//	    }},
//	    Bottom: []topology.Node{{
//	        Name:  "esx-01",
//	        Ports: []topology.Port{{Address: "21:00:00:00:00:00:00:01", Protocol: topology.ProtocolFC}},
//	    }},
//	    Edges: []topology.Edge{{
//	        Source:   "50:00:00:00:00:00:00:01",
//	        Target:   "21:00:00:00:00:00:00:01",
//	        Protocol: topology.ProtocolFC,
//	    }},
//	}
//
// Node order within each group is significant: the layout engine places
// nodes in list order, and ports are stacked in list order.
//
// # Serialization
//
// Topologies are exchanged as JSON or YAML. [ReadFile] and [WriteFile] pick
// the format from the file extension; [Read] and [Write] take it explicitly.
//
// # Validation
//
// [Validate] performs structural checks (non-empty names and addresses,
// known orientation values are handled elsewhere). Address uniqueness is
// not enforced; [DuplicateAddresses] reports collisions so callers can warn.
package topology
