package printer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tarm/serial"
)

const bluetoothBaud = 9600

// BluetoothTransport drives a Bluetooth SPP printer through its bound
// RFCOMM serial device. Pairing and rfcomm binding are the platform's
// job; by the time we dial, the printer is a serial device path.
type BluetoothTransport struct {
	port *serial.Port
	mu   sync.Mutex
}

// dialBluetoothTransport opens the RFCOMM serial device for a Bluetooth
// printer. Addresses that are already device paths are opened directly; a
// bare adapter address maps to the default rfcomm binding.
func dialBluetoothTransport(_ context.Context, address string) (Transport, error) {
	devicePath := address
	if !strings.HasPrefix(address, "/") && !strings.HasPrefix(strings.ToUpper(address), "COM") {
		devicePath = "/dev/rfcomm0"
	}

	config := &serial.Config{
		Name: devicePath,
		Baud: bluetoothBaud,
	}

	port, err := serial.OpenPort(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluetooth printer %s: %w", devicePath, err)
	}

	return &BluetoothTransport{port: port}, nil
}

// Write sends data to the bluetooth printer.
func (t *BluetoothTransport) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.port.Write(data)
}

// Close closes the serial port.
func (t *BluetoothTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return t.port.Close()
	}
	return nil
}
