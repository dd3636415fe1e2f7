package printer

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

const networkDialTimeout = 5 * time.Second

// NetworkTransport is a raw TCP link to a network printer, typically on
// port 9100.
type NetworkTransport struct {
	conn net.Conn
	mu   sync.Mutex
}

// dialNetworkTransport connects to a network printer at host:port.
func dialNetworkTransport(ctx context.Context, address string) (Transport, error) {
	d := net.Dialer{Timeout: networkDialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, networkDialTimeout)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to network printer: %w", err)
	}

	return &NetworkTransport{conn: conn}, nil
}

// Write sends data to the network printer.
func (t *NetworkTransport) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn.Write(data)
}

// Close closes the network connection.
func (t *NetworkTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
