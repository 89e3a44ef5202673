package topology

import "strings"

// ProtocolKind identifies the transport of a port or connection.
//
// The set is open: any non-empty string is accepted and treated as a
// protocol of its own. The constants below are the kinds that renderers
// know how to style.
type ProtocolKind string

// Known protocol kinds.
const (
	ProtocolFC      ProtocolKind = "FC"
	ProtocolISCSI   ProtocolKind = "iSCSI"
	ProtocolNVMeTCP ProtocolKind = "NVMe/TCP"
	ProtocolNVMeFC  ProtocolKind = "NVMe/FC"
	ProtocolNFS     ProtocolKind = "NFS"
)

// KnownProtocols lists the protocol kinds with dedicated styling, in legend order.
var KnownProtocols = []ProtocolKind{
	ProtocolFC,
	ProtocolISCSI,
	ProtocolNVMeTCP,
	ProtocolNVMeFC,
	ProtocolNFS,
}

// ParseProtocol maps common spellings ("fc", "ISCSI", "nvme-tcp") to the
// canonical kind. Unrecognized values are returned trimmed but otherwise
// unchanged.
func ParseProtocol(s string) ProtocolKind {
	s = strings.TrimSpace(s)
	switch strings.ToLower(strings.NewReplacer("-", "", "/", "", "_", "", " ", "").Replace(s)) {
	case "fc", "fibrechannel", "fcp":
		return ProtocolFC
	case "iscsi":
		return ProtocolISCSI
	case "nvmetcp", "nvmeoftcp":
		return ProtocolNVMeTCP
	case "nvmefc", "fcnvme", "nvmeoffc":
		return ProtocolNVMeFC
	case "nfs":
		return ProtocolNFS
	}
	return ProtocolKind(s)
}

// IsKnown reports whether k is one of [KnownProtocols].
func (k ProtocolKind) IsKnown() bool {
	switch k {
	case ProtocolFC, ProtocolISCSI, ProtocolNVMeTCP, ProtocolNVMeFC, ProtocolNFS:
		return true
	}
	return false
}

// Fabric returns the physical fabric family: "fc" for Fibre Channel based
// kinds, "ethernet" for IP based kinds, and "" when unknown.
func (k ProtocolKind) Fabric() string {
	switch k {
	case ProtocolFC, ProtocolNVMeFC:
		return "fc"
	case ProtocolISCSI, ProtocolNVMeTCP, ProtocolNFS:
		return "ethernet"
	}
	return ""
}

func (k ProtocolKind) String() string { return string(k) }
