// Package identify maps probe evidence to a human-readable printer label.
// Identification is cosmetic: it never changes how a device is probed or
// connected, and it never fails.
package identify

import (
	"fmt"
	"strings"
)

// Verdict classifies the outcome of a raw TCP probe.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictOpen
	VerdictRefused
	VerdictTimedOut
	VerdictUnreachable
)

// Evidence is what the prober learned about one host:port.
type Evidence struct {
	Verdict         Verdict
	VendorEndpoint  string // vendor key whose status endpoint answered
	SNMPDescription string // sysDescr text, when the SNMP strategy answered
}

// VendorProfile describes one vendor family: the status endpoints its
// printers expose and the ports they factory-default to. One table, one
// loop - per-vendor special cases belong here, not in code.
type VendorProfile struct {
	Key       string
	Family    string
	Endpoints []string
	Ports     []int
	Keywords  []string // matched against SNMP sysDescr, case-insensitive
}

var vendorProfiles = []VendorProfile{
	{
		Key:       "epson",
		Family:    "Epson TM Series",
		Endpoints: []string{"/cgi-bin/epos/service.cgi", "/PRESENTATION/EPSON"},
		Ports:     []int{8008, 8043},
		Keywords:  []string{"epson", "tm-"},
	},
	{
		Key:       "star",
		Family:    "Star Micronics TSP",
		Endpoints: []string{"/StarWebPRNT/SendMessage", "/js/star/webprnt"},
		Ports:     []int{},
		Keywords:  []string{"star micronics", "tsp"},
	},
	{
		Key:       "bixolon",
		Family:    "Bixolon SRP Series",
		Endpoints: []string{"/cgi-bin/bxlconfig.cgi"},
		Ports:     []int{},
		Keywords:  []string{"bixolon", "srp-"},
	},
	{
		Key:       "citizen",
		Family:    "Citizen CT Series",
		Endpoints: []string{"/cgi-bin/citizen_status.cgi"},
		Ports:     []int{},
		Keywords:  []string{"citizen", "ct-s"},
	},
}

// portFamilies labels ports that are not tied to one vendor.
var portFamilies = map[int]string{
	9100: "Raw Port Printer",
	9101: "Raw Port Printer",
	9102: "Raw Port Printer",
	515:  "LPD Printer",
	631:  "IPP Printer",
	8008: "Epson TM Series",
	8043: "Epson TM Series",
}

// Profiles returns the vendor table. Callers treat it as read-only.
func Profiles() []VendorProfile {
	return vendorProfiles
}

// ProfileByKey returns the profile for a vendor key, or nil.
func ProfileByKey(key string) *VendorProfile {
	for i := range vendorProfiles {
		if vendorProfiles[i].Key == key {
			return &vendorProfiles[i]
		}
	}
	return nil
}

// Identify produces a display name for a discovered endpoint.
//
// Precedence: vendor endpoint evidence, then SNMP description keywords,
// then the static port table, then a generic label. Any unexpected
// internal state degrades to the port table instead of failing.
func Identify(host string, port int, ev Evidence) string {
	if name := identifyFromEvidence(host, port, ev); name != "" {
		return name
	}
	return identifyFromPort(host, port)
}

func identifyFromEvidence(host string, port int, ev Evidence) string {
	if ev.VendorEndpoint != "" {
		if p := ProfileByKey(ev.VendorEndpoint); p != nil {
			return fmt.Sprintf("%s (%s:%d)", p.Family, host, port)
		}
	}
	if ev.SNMPDescription != "" {
		desc := strings.ToLower(ev.SNMPDescription)
		for _, p := range vendorProfiles {
			for _, kw := range p.Keywords {
				if strings.Contains(desc, kw) {
					return fmt.Sprintf("%s (%s:%d)", p.Family, host, port)
				}
			}
		}
	}
	return ""
}

func identifyFromPort(host string, port int) string {
	if family, ok := portFamilies[port]; ok {
		return fmt.Sprintf("%s (%s:%d)", family, host, port)
	}
	return fmt.Sprintf("Network Receipt Printer (%s:%d)", host, port)
}
