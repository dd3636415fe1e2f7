package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/topology"
)

// fakeProber answers for a fixed set of host:port pairs and records
// concurrency and call counts.
type fakeProber struct {
	mu        sync.Mutex
	reachable map[string]int // host -> port answered
	calls     int
	active    int
	peak      int
}

func newFakeProber(reachable map[string]int) *fakeProber {
	return &fakeProber{reachable: reachable}
}

func (f *fakeProber) Check(ctx context.Context, host string, ports []topology.PortCandidate) (device.Device, bool) {
	f.mu.Lock()
	f.calls++
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	// Let the batch actually overlap so peak concurrency is observable.
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.active--
	port, ok := f.reachable[host]
	f.mu.Unlock()

	if !ok {
		return device.Device{}, false
	}
	address := fmt.Sprintf("%s:%d", host, port)
	return device.Device{
		ID:          "net:" + address,
		DisplayName: "Test Printer",
		Transport:   device.TransportNetwork,
		Address:     address,
	}, true
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fullSuffixes() []int {
	out := make([]int, 254)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestSweepBatchWaveCount(t *testing.T) {
	prober := newFakeProber(nil)
	s := NewScheduler(prober, topology.PortCandidates(), 20, 0)

	waves := 1 // sleeps run between batches, so waves = sleeps + 1
	s.sleep = func(ctx context.Context, d time.Duration) {
		waves++
	}

	s.Sweep(context.Background(), "192.168.1", fullSuffixes())

	// ceil(254/20) = 13 sequential waves
	if waves != 13 {
		t.Errorf("Expected 13 batch waves for 254 hosts at batch size 20, got %d", waves)
	}
	if prober.callCount() != 254 {
		t.Errorf("Expected every host probed exactly once, got %d", prober.callCount())
	}
}

func TestSweepBoundsPeakConcurrency(t *testing.T) {
	prober := newFakeProber(nil)
	s := NewScheduler(prober, topology.PortCandidates(), 20, 0)
	s.sleep = func(ctx context.Context, d time.Duration) {}

	s.Sweep(context.Background(), "192.168.1", fullSuffixes())

	if prober.peak > 20 {
		t.Errorf("Peak outstanding probes %d exceeded batch size 20", prober.peak)
	}
}

func TestSweepSingleResponder(t *testing.T) {
	prober := newFakeProber(map[string]int{"192.168.1.105": 9100})
	s := NewScheduler(prober, []topology.PortCandidate{{Port: 9100}, {Port: 9101}}, 20, 0)
	s.sleep = func(ctx context.Context, d time.Duration) {}

	devices := s.Sweep(context.Background(), "192.168.1", fullSuffixes())

	if len(devices) != 1 {
		t.Fatalf("Expected exactly one device, got %d", len(devices))
	}
	if devices[0].Address != "192.168.1.105:9100" {
		t.Errorf("Expected 192.168.1.105:9100, got %s", devices[0].Address)
	}
	if devices[0].Transport != device.TransportNetwork {
		t.Errorf("Expected network transport, got %s", devices[0].Transport)
	}
}

func TestSweepKeepsSuffixPriorityOrder(t *testing.T) {
	prober := newFakeProber(map[string]int{
		"192.168.1.3":  9100,
		"192.168.1.44": 9100,
	})
	s := NewScheduler(prober, topology.PortCandidates(), 20, 0)
	s.sleep = func(ctx context.Context, d time.Duration) {}

	devices := s.Sweep(context.Background(), "192.168.1", fullSuffixes())

	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}
	if devices[0].Address != "192.168.1.3:9100" {
		t.Errorf("Expected suffix order preserved, got %s first", devices[0].Address)
	}
}

func TestSweepCancelledContextStopsEarly(t *testing.T) {
	prober := newFakeProber(nil)
	s := NewScheduler(prober, topology.PortCandidates(), 20, 0)
	s.sleep = func(ctx context.Context, d time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	devices := s.Sweep(ctx, "192.168.1", fullSuffixes())
	if len(devices) != 0 {
		t.Errorf("Expected no devices from cancelled sweep, got %d", len(devices))
	}
	if prober.callCount() != 0 {
		t.Errorf("Expected no probes after cancellation, got %d", prober.callCount())
	}
}
