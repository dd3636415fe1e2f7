// Package printer owns the single active printer connection: a small
// state machine over transport-specific links plus the ESC/POS framing
// used on the print path.
package printer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/logging"
)

// State is the connection lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

var (
	// ErrBluetoothUnsupported is a capability mismatch, not a transient
	// failure: retrying on the same runtime cannot succeed.
	ErrBluetoothUnsupported = errors.New("bluetooth not supported on this runtime")

	// ErrNotConnected guards print attempts without a live connection.
	ErrNotConnected = errors.New("no printer connected")

	// ErrConnecting rejects a connect while another is in flight.
	ErrConnecting = errors.New("connection attempt already in progress")

	errUnknownTransport = errors.New("unknown transport type")
)

// Transport is one open link to a printer.
type Transport interface {
	Write(data []byte) (int, error)
	Close() error
}

// DialFunc opens a transport to an address. Injectable for tests.
type DialFunc func(ctx context.Context, address string) (Transport, error)

// Manager holds at most one active printer connection system-wide.
// Connecting to a new device implicitly disconnects the previous one.
type Manager struct {
	caps device.Capabilities

	mu      sync.Mutex
	state   State
	current *device.Device
	conn    Transport

	dialNetwork   DialFunc
	dialBluetooth DialFunc
}

// NewManager creates a Manager using the real network and RFCOMM dialers.
func NewManager(caps device.Capabilities) *Manager {
	return &Manager{
		caps:          caps,
		dialNetwork:   dialNetworkTransport,
		dialBluetooth: dialBluetoothTransport,
	}
}

// NewManagerWithDialers creates a Manager with injected dialers. Nil
// dialers fall back to the real ones.
func NewManagerWithDialers(caps device.Capabilities, network, bt DialFunc) *Manager {
	m := NewManager(caps)
	if network != nil {
		m.dialNetwork = network
	}
	if bt != nil {
		m.dialBluetooth = bt
	}
	return m
}

// Connect performs the transport handshake for dev and makes it the
// connected printer. Any previously connected device is disconnected
// first; on failure the manager ends up Disconnected.
func (m *Manager) Connect(ctx context.Context, dev device.Device) error {
	m.mu.Lock()
	if m.state == StateConnecting {
		m.mu.Unlock()
		return ErrConnecting
	}

	// Implicit disconnect-then-connect: only one connection system-wide.
	m.closeLocked()
	m.state = StateConnecting
	m.mu.Unlock()

	dial, err := m.dialerFor(dev.Transport)
	if err != nil {
		m.settle(nil, nil, err)
		return err
	}

	conn, err := dial(ctx, dev.Address)
	if err != nil {
		m.settle(nil, nil, err)
		logging.Warn("printer connect failed",
			zap.String("transport", string(dev.Transport)),
			zap.String("address", dev.Address),
			zap.Error(err),
		)
		return err
	}

	connected := dev
	connected.Connected = true
	m.settle(conn, &connected, nil)

	logging.Info("printer connected",
		zap.String("transport", string(dev.Transport)),
		zap.String("address", dev.Address),
		zap.String("name", dev.DisplayName),
	)
	return nil
}

func (m *Manager) dialerFor(t device.Transport) (DialFunc, error) {
	switch t {
	case device.TransportNetwork:
		return m.dialNetwork, nil
	case device.TransportBluetooth:
		if !m.caps.SupportsBluetooth {
			return nil, ErrBluetoothUnsupported
		}
		return m.dialBluetooth, nil
	default:
		return nil, errUnknownTransport
	}
}

// settle finishes a connect attempt, entering Connected or Disconnected.
func (m *Manager) settle(conn Transport, dev *device.Device, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = StateDisconnected
		m.conn = nil
		m.current = nil
		return
	}
	m.state = StateConnected
	m.conn = conn
	m.current = dev
}

// Disconnect closes the active connection. Idempotent: disconnecting an
// already disconnected manager is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.state = StateDisconnected
}

func (m *Manager) closeLocked() {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			logging.Debug("closing printer connection", zap.Error(err))
		}
		m.conn = nil
	}
	m.current = nil
}

// Print frames content as an ESC/POS text job and transmits it over the
// active connection. It requires Connected and reports transport failures
// as false rather than propagating them.
func (m *Manager) Print(content string) (bool, error) {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	dev := m.current
	m.mu.Unlock()

	if state != StateConnected || conn == nil {
		return false, ErrNotConnected
	}

	payload := EncodeTextJob(content)
	if _, err := conn.Write(payload); err != nil {
		logging.Warn("print transmission failed",
			zap.String("address", dev.Address),
			zap.Error(err),
		)
		return false, nil
	}

	logging.Info("receipt printed",
		zap.String("address", dev.Address),
		zap.Int("bytes", len(payload)),
	)
	return true, nil
}

// Current returns a copy of the connected device, or nil.
func (m *Manager) Current() *device.Device {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateConnected || m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
