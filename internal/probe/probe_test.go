package probe

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/topology"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func openDial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	client, server := net.Pipe()
	server.Close()
	return client, nil
}

func refusedDial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	return nil, &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
}

func timeoutDial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	return nil, timeoutError{}
}

func unreachableDial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	return nil, errors.New("no route to host")
}

func failFetch(ctx context.Context, url string) (int, error) {
	return 0, errors.New("connection failed")
}

func failSNMP(ctx context.Context, host string) (string, error) {
	return "", errors.New("snmp timeout")
}

func rawOnlyCaps() device.Capabilities {
	return device.Capabilities{ProbeStrategies: []string{"raw"}}
}

func allCaps() device.Capabilities {
	return device.Capabilities{ProbeStrategies: []string{"raw", "http", "snmp"}}
}

func TestCheckOpenPortIsReachable(t *testing.T) {
	p := NewWithTransports(rawOnlyCaps(), openDial, failFetch, failSNMP)

	dev, ok := p.Check(context.Background(), "192.168.1.105", topology.PortCandidates())
	if !ok {
		t.Fatal("Expected open port to be reachable")
	}
	if dev.Address != "192.168.1.105:9100" {
		t.Errorf("Expected first candidate port 9100, got %s", dev.Address)
	}
	if dev.Transport != device.TransportNetwork {
		t.Errorf("Expected network transport, got %s", dev.Transport)
	}
}

func TestCheckRefusedCountsAsLiveListener(t *testing.T) {
	p := NewWithTransports(rawOnlyCaps(), refusedDial, failFetch, failSNMP)

	_, ok := p.Check(context.Background(), "192.168.1.50", topology.PortCandidates())
	if !ok {
		t.Error("Expected connection-refused to count as a live host")
	}
}

func TestCheckTimeoutIsNotReachable(t *testing.T) {
	p := NewWithTransports(rawOnlyCaps(), timeoutDial, failFetch, failSNMP)

	_, ok := p.Check(context.Background(), "192.168.1.50", topology.PortCandidates())
	if ok {
		t.Error("Expected timeout to classify as unreachable")
	}
}

func TestCheckUnreachableHost(t *testing.T) {
	p := NewWithTransports(rawOnlyCaps(), unreachableDial, failFetch, failSNMP)

	_, ok := p.Check(context.Background(), "192.168.9.9", topology.PortCandidates())
	if ok {
		t.Error("Expected no-route host to be unreachable")
	}
}

func TestCheckStopsAtFirstReachablePort(t *testing.T) {
	var calls int32
	dial := func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
		atomic.AddInt32(&calls, 1)
		return openDial(ctx, address, timeout)
	}

	p := NewWithTransports(rawOnlyCaps(), dial, failFetch, failSNMP)

	_, ok := p.Check(context.Background(), "192.168.1.105", topology.PortCandidates())
	if !ok {
		t.Fatal("Expected reachable")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected probing to stop after the first hit, got %d dials", got)
	}
}

func TestCheckAbsorbsAllStrategyFailures(t *testing.T) {
	// Every strategy fails; Check must quietly report unreachable.
	p := NewWithTransports(allCaps(), unreachableDial, failFetch, failSNMP)

	_, ok := p.Check(context.Background(), "10.0.0.1", topology.PortCandidates())
	if ok {
		t.Error("Expected unreachable when every strategy fails")
	}
}

func TestHTTPVendorEndpointEvidence(t *testing.T) {
	fetch := func(ctx context.Context, url string) (int, error) {
		return 200, nil
	}
	caps := device.Capabilities{ProbeStrategies: []string{"http"}}
	p := NewWithTransports(caps, unreachableDial, fetch, failSNMP)

	dev, ok := p.Check(context.Background(), "192.168.1.60", []topology.PortCandidate{{Port: 8008, Vendor: "epson"}})
	if !ok {
		t.Fatal("Expected vendor endpoint hit to be reachable")
	}
	if dev.DisplayName != "Epson TM Series (192.168.1.60:8008)" {
		t.Errorf("Expected Epson label from endpoint evidence, got %q", dev.DisplayName)
	}
}

func TestSNMPEvidence(t *testing.T) {
	snmp := func(ctx context.Context, host string) (string, error) {
		return "BIXOLON SRP-350III", nil
	}
	caps := device.Capabilities{ProbeStrategies: []string{"snmp"}}
	p := NewWithTransports(caps, unreachableDial, failFetch, snmp)

	dev, ok := p.Check(context.Background(), "192.168.1.61", []topology.PortCandidate{{Port: 9100}})
	if !ok {
		t.Fatal("Expected SNMP answer to be reachable")
	}
	if dev.DisplayName != "Bixolon SRP Series (192.168.1.61:9100)" {
		t.Errorf("Expected Bixolon label from sysDescr, got %q", dev.DisplayName)
	}
}

func TestDisabledStrategiesAreSkipped(t *testing.T) {
	var fetched int32
	fetch := func(ctx context.Context, url string) (int, error) {
		atomic.AddInt32(&fetched, 1)
		return 200, nil
	}

	p := NewWithTransports(rawOnlyCaps(), unreachableDial, fetch, failSNMP)

	_, ok := p.Check(context.Background(), "192.168.1.62", []topology.PortCandidate{{Port: 8008}})
	if ok {
		t.Error("Expected unreachable with only the raw strategy enabled")
	}
	if atomic.LoadInt32(&fetched) != 0 {
		t.Error("HTTP strategy ran despite being disabled")
	}
}

func TestCheckHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewWithTransports(rawOnlyCaps(), openDial, failFetch, failSNMP)

	_, ok := p.Check(ctx, "192.168.1.105", topology.PortCandidates())
	if ok {
		t.Error("Expected no result from a cancelled context")
	}
}
