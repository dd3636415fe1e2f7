//go:build linux

package bluetooth

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

// BLEBackend enumerates peripherals through the kernel HCI socket.
type BLEBackend struct {
	mu     sync.Mutex
	device ble.Device
}

// NewPlatformBackend returns the linux BLE backend.
func NewPlatformBackend() Backend {
	return &BLEBackend{}
}

// Enumerate performs an advertisement scan bounded by ctx and reports every
// named peripheral seen once. Filtering to printer-like names happens in
// the Enumerator, not here.
func (b *BLEBackend) Enumerate(ctx context.Context) ([]Peripheral, error) {
	if err := b.ensureDevice(); err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		out  []Peripheral
	)

	handler := func(a ble.Advertisement) {
		addr := a.Addr().String()
		mu.Lock()
		defer mu.Unlock()
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, Peripheral{
			Name:    a.LocalName(),
			Address: addr,
		})
	}

	// Scan runs until ctx expires; that is the normal exit, not an error.
	err := ble.Scan(ctx, false, handler, nil)
	if err != nil && ctx.Err() == nil {
		return nil, err
	}

	return out, nil
}

func (b *BLEBackend) ensureDevice() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device != nil {
		return nil
	}

	d, err := linux.NewDevice()
	if err != nil {
		return err
	}
	b.device = d
	ble.SetDefaultDevice(d)
	return nil
}
