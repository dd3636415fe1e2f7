// Package device contains shared printer device types to avoid import cycles.
package device

import (
	"fmt"
	"time"
)

// Transport is the connectivity medium for a printer.
type Transport string

const (
	TransportNetwork   Transport = "network"
	TransportBluetooth Transport = "bluetooth"
)

// Device represents a discovered receipt printer.
type Device struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Transport   Transport `json:"transport"`
	Address     string    `json:"address"` // host:port for network, adapter address for bluetooth
	Connected   bool      `json:"connected"`
}

// String returns a human-readable representation of the device.
func (d *Device) String() string {
	return fmt.Sprintf("%s [%s %s]", d.DisplayName, d.Transport, d.Address)
}

// ScanResult is the outcome of one full discovery sweep.
type ScanResult struct {
	Devices      []Device  `json:"devices"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Capabilities describes what the runtime can do. It is injected at
// construction instead of branching on platform strings at call sites.
type Capabilities struct {
	SupportsBluetooth bool     `json:"supports_bluetooth" yaml:"supports_bluetooth"`
	ProbeStrategies   []string `json:"probe_strategies" yaml:"probe_strategies"`
}

// DefaultCapabilities enables every probe strategy and leaves Bluetooth off;
// Bluetooth support is opted into by the platform wiring in cmd/server.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		SupportsBluetooth: false,
		ProbeStrategies:   []string{"raw", "http", "snmp"},
	}
}

// HasStrategy reports whether the named probe strategy is enabled.
func (c Capabilities) HasStrategy(name string) bool {
	for _, s := range c.ProbeStrategies {
		if s == name {
			return true
		}
	}
	return false
}
