package registry

import (
	"path/filepath"
	"testing"

	"github.com/tillpoint/printbridge/internal/device"
)

func testDevice() device.Device {
	return device.Device{
		DisplayName: "Epson TM Series (192.168.1.105:9100)",
		Transport:   device.TransportNetwork,
		Address:     "192.168.1.105:9100",
	}
}

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printers.json")
	reg, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	return reg, path
}

func TestAssignStableID(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first := reg.Assign(testDevice())
	if first.ID == "" {
		t.Fatal("Expected non-empty printer ID")
	}

	second := reg.Assign(testDevice())
	if first.ID != second.ID {
		t.Errorf("Expected same ID for same printer: %s != %s", first.ID, second.ID)
	}
}

func TestAssignDistinctTransports(t *testing.T) {
	reg, _ := newTestRegistry(t)

	net := reg.Assign(testDevice())
	bt := reg.Assign(device.Device{
		DisplayName: "MTP-II Thermal",
		Transport:   device.TransportBluetooth,
		Address:     "AA:BB:CC:DD:EE:01",
	})

	if net.ID == bt.ID {
		t.Error("Expected distinct IDs for distinct devices")
	}
}

func TestSetAndApplyCustomName(t *testing.T) {
	reg, _ := newTestRegistry(t)

	dev := reg.Assign(testDevice())

	if !reg.SetName(dev.ID, "Kitchen Printer") {
		t.Error("Expected successful name set")
	}
	if reg.Name(dev.ID) != "Kitchen Printer" {
		t.Errorf("Expected 'Kitchen Printer', got %q", reg.Name(dev.ID))
	}

	// A rediscovered device picks up the custom name.
	renamed := reg.Assign(testDevice())
	if renamed.DisplayName != "Kitchen Printer" {
		t.Errorf("Expected custom name applied on assign, got %q", renamed.DisplayName)
	}
}

func TestSetNameUnknownID(t *testing.T) {
	reg, _ := newTestRegistry(t)

	if reg.SetName("no-such-id", "Nope") {
		t.Error("Expected SetName to fail for unknown ID")
	}
}

func TestPersistence(t *testing.T) {
	reg1, path := newTestRegistry(t)

	dev := reg1.Assign(testDevice())
	reg1.SetName(dev.ID, "Front Counter")

	// Simulate an app restart.
	reg2, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reopen registry: %v", err)
	}

	reopened := reg2.Assign(testDevice())
	if reopened.ID != dev.ID {
		t.Errorf("Expected same ID after reload: %s != %s", dev.ID, reopened.ID)
	}
	if reopened.DisplayName != "Front Counter" {
		t.Errorf("Expected name to persist, got %q", reopened.DisplayName)
	}
}

func TestLookupAndRemove(t *testing.T) {
	reg, _ := newTestRegistry(t)

	dev := reg.Assign(testDevice())

	entry := reg.Lookup(dev.ID)
	if entry == nil {
		t.Fatal("Expected entry for assigned device")
	}
	if entry.Transport != device.TransportNetwork {
		t.Errorf("Expected network transport, got %s", entry.Transport)
	}

	if !reg.Remove(dev.ID) {
		t.Error("Expected successful removal")
	}
	if reg.Lookup(dev.ID) != nil {
		t.Error("Expected nil after removal")
	}
}
