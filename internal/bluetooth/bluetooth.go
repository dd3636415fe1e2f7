// Package bluetooth enumerates nearby Bluetooth receipt printers.
//
// The platform backend is abstracted behind an interface so discovery can
// run (and be tested) on runtimes without a Bluetooth stack. Only the
// linux build carries a real BLE implementation.
package bluetooth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/logging"
)

// Backend abstracts the platform Bluetooth stack.
type Backend interface {
	// Enumerate returns nearby/paired devices. Implementations may block
	// for a scan window bounded by ctx.
	Enumerate(ctx context.Context) ([]Peripheral, error)
}

// Peripheral is one raw device as reported by the platform stack, before
// the printer-name filter is applied.
type Peripheral struct {
	Name    string
	Address string
}

// printerNameHints marks peripherals that look like receipt printers.
// Matching is case-insensitive and heuristic; it only affects which
// devices are offered, not how they are driven.
var printerNameHints = []string{
	"print",
	"pos-",
	"pos_",
	"thermal",
	"receipt",
	"mtp-",  // Goojprt
	"rpp",   // Rongta portable
	"pt-",   // generic portable thermal
	"tm-p",  // Epson mobile
	"spp-r", // Bixolon mobile
	"star",
}

// Enumerator filters a Backend's results down to printer-like devices.
type Enumerator struct {
	backend Backend
	caps    device.Capabilities
	window  time.Duration
}

// NewEnumerator builds an Enumerator. A nil backend is valid and behaves
// as an empty adapter; combined with caps it lets unsupported runtimes
// share one code path.
func NewEnumerator(backend Backend, caps device.Capabilities) *Enumerator {
	return &Enumerator{
		backend: backend,
		caps:    caps,
		window:  4 * time.Second,
	}
}

// Enumerate returns discovered Bluetooth printers. On runtimes without
// Bluetooth support it returns an empty list, never an error: discovery
// treats a missing capability the same as an empty airspace.
func (e *Enumerator) Enumerate(ctx context.Context) []device.Device {
	if !e.caps.SupportsBluetooth || e.backend == nil {
		return nil
	}

	scanCtx, cancel := context.WithTimeout(ctx, e.window)
	defer cancel()

	peripherals, err := e.backend.Enumerate(scanCtx)
	if err != nil {
		logging.Debug("bluetooth enumeration failed", zap.Error(err))
		return nil
	}

	var out []device.Device
	for _, p := range peripherals {
		if !LooksLikePrinter(p.Name) {
			continue
		}
		out = append(out, device.Device{
			ID:          "bt:" + p.Address,
			DisplayName: p.Name,
			Transport:   device.TransportBluetooth,
			Address:     p.Address,
		})
	}
	return out
}

// LooksLikePrinter applies the printer name heuristic.
func LooksLikePrinter(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, hint := range printerNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
