package topology

import "testing"

func TestSubnetPrefixesDeduplicated(t *testing.T) {
	prefixes := SubnetPrefixes()

	if len(prefixes) == 0 {
		t.Fatal("Expected non-empty prefix table")
	}

	seen := make(map[string]bool)
	for _, p := range prefixes {
		if seen[p] {
			t.Errorf("Duplicate prefix in table: %s", p)
		}
		seen[p] = true
	}
}

func TestSubnetPrefixesCommonRangesFirst(t *testing.T) {
	prefixes := SubnetPrefixes()

	if prefixes[0] != "192.168.1" {
		t.Errorf("Expected 192.168.1 first, got %s", prefixes[0])
	}
}

func TestSubnetPrefixesReturnsCopy(t *testing.T) {
	a := SubnetPrefixes()
	a[0] = "mutated"

	b := SubnetPrefixes()
	if b[0] == "mutated" {
		t.Error("SubnetPrefixes exposed internal table to mutation")
	}
}

func TestPortCandidatesFrontLoaded(t *testing.T) {
	ports := PortCandidates()

	if len(ports) == 0 {
		t.Fatal("Expected non-empty port table")
	}
	if ports[0].Port != 9100 {
		t.Errorf("Expected 9100 first, got %d", ports[0].Port)
	}
}

func TestPortsMatchesCandidates(t *testing.T) {
	candidates := PortCandidates()
	ports := Ports()

	if len(ports) != len(candidates) {
		t.Fatalf("Expected %d ports, got %d", len(candidates), len(ports))
	}
	for i, p := range ports {
		if p != candidates[i].Port {
			t.Errorf("Port order mismatch at %d: %d != %d", i, p, candidates[i].Port)
		}
	}
}

func TestHostSuffixesCoversFullRange(t *testing.T) {
	suffixes := HostSuffixes()

	if len(suffixes) != 254 {
		t.Fatalf("Expected 254 suffixes, got %d", len(suffixes))
	}

	seen := make(map[int]bool)
	for _, n := range suffixes {
		if n < 1 || n > 254 {
			t.Errorf("Suffix out of range: %d", n)
		}
		if seen[n] {
			t.Errorf("Duplicate suffix: %d", n)
		}
		seen[n] = true
	}
}

func TestHostSuffixesGatewayLast(t *testing.T) {
	suffixes := HostSuffixes()

	if suffixes[len(suffixes)-1] != 1 {
		t.Errorf("Expected .1 probed last, got %d", suffixes[len(suffixes)-1])
	}
	if suffixes[0] != 100 {
		t.Errorf("Expected DHCP range first (100), got %d", suffixes[0])
	}
}
