// Package topology provides the static candidate subnets and ports used by
// discovery. The tables are fixed configuration data, not derived from the
// local interfaces, so a sweep behaves the same on every runtime.
package topology

// PortCandidate is a TCP port worth probing, optionally tied to a vendor
// whose printers ship listening on it.
type PortCandidate struct {
	Port   int
	Vendor string
}

// subnetPrefixes is ordered by how likely a receipt printer is to live
// there: common home/office ranges first, then corporate blocks, then
// manufacturer factory defaults.
var subnetPrefixes = []string{
	"192.168.1",
	"192.168.0",
	"192.168.2",
	"10.0.0",
	"10.0.1",
	"172.16.0",
	"192.168.10",
	"192.168.100",
	"192.168.123", // common SOHO router default
	"192.168.192", // Epson factory default
	"192.168.223", // Star factory default
}

// portCandidates is front-loaded with the statistically most common
// printer ports so the first hit arrives quickly.
var portCandidates = []PortCandidate{
	{Port: 9100, Vendor: "generic-raw"}, // JetDirect / raw
	{Port: 9101, Vendor: "generic-raw"},
	{Port: 9102, Vendor: "generic-raw"},
	{Port: 515, Vendor: "lpd"},
	{Port: 631, Vendor: "ipp"},
	{Port: 8008, Vendor: "epson"}, // ePOS-Print
	{Port: 8043, Vendor: "epson"}, // ePOS-Print TLS
	{Port: 80, Vendor: ""},
}

// SubnetPrefixes returns the ordered, deduplicated candidate subnet
// prefixes. The result is a copy; callers may not mutate the table.
func SubnetPrefixes() []string {
	out := make([]string, 0, len(subnetPrefixes))
	seen := make(map[string]struct{}, len(subnetPrefixes))
	for _, p := range subnetPrefixes {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// PortCandidates returns the ordered candidate ports as a copy.
func PortCandidates() []PortCandidate {
	out := make([]PortCandidate, len(portCandidates))
	copy(out, portCandidates)
	return out
}

// Ports returns just the port numbers, in candidate order.
func Ports() []int {
	out := make([]int, len(portCandidates))
	for i, c := range portCandidates {
		out[i] = c.Port
	}
	return out
}

// HostSuffixes returns the priority-ordered host suffixes 1-254 for one
// subnet. Gateways and low addresses rarely host printers, so the common
// DHCP range comes first and .1/.254 last.
func HostSuffixes() []int {
	out := make([]int, 0, 254)
	seen := make(map[int]struct{}, 254)
	add := func(n int) {
		if n < 1 || n > 254 {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	// Typical DHCP pools and printer static assignments
	for n := 100; n <= 200; n++ {
		add(n)
	}
	for n := 2; n <= 99; n++ {
		add(n)
	}
	for n := 201; n <= 253; n++ {
		add(n)
	}
	add(254)
	add(1)
	return out
}
