package discovery

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tillpoint/printbridge/internal/bluetooth"
	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/logging"
)

// DefaultCacheTTL is how long one sweep's result keeps being served
// without new probes.
const DefaultCacheTTL = 30 * time.Second

// Event is a progress notification emitted during a sweep, consumed by the
// websocket stream.
type Event struct {
	Type   string         `json:"type"` // scan_started, device_found, scan_finished
	Device *device.Device `json:"device,omitempty"`
	Count  int            `json:"count,omitempty"`
}

// Scanner owns the full discovery pipeline: network sweep across all
// configured prefixes, Bluetooth enumeration where supported, host-level
// dedup, and the TTL cache over the last result.
type Scanner struct {
	scheduler *Scheduler
	enum      *bluetooth.Enumerator
	prefixes  []string
	suffixes  []int
	ttl       time.Duration

	mu     sync.RWMutex
	cached *device.ScanResult

	group singleflight.Group

	// now is swappable so cache expiry is testable.
	now func() time.Time

	onEvent func(Event)
}

// NewScanner wires a Scanner from its parts. prefixes and suffixes are
// typically the topology tables; tests pass narrowed ones.
func NewScanner(scheduler *Scheduler, enum *bluetooth.Enumerator, prefixes []string, suffixes []int, ttl time.Duration) *Scanner {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Scanner{
		scheduler: scheduler,
		enum:      enum,
		prefixes:  prefixes,
		suffixes:  suffixes,
		ttl:       ttl,
		now:       time.Now,
	}
}

// OnEvent registers a progress callback. Callbacks run on the sweeping
// goroutine and must not block.
func (s *Scanner) OnEvent(fn func(Event)) {
	s.onEvent = fn
}

// DiscoverPrinters returns the printers reachable right now, serving the
// cached result when a sweep completed within the TTL window and found at
// least one device. Concurrent calls during an in-flight sweep share that
// sweep instead of starting another. It never fails: a sweep where nothing
// answers yields an empty list.
func (s *Scanner) DiscoverPrinters(ctx context.Context) []device.Device {
	if result, ok := s.cachedResult(); ok {
		logging.Debug("serving cached scan result",
			zap.Int("devices", len(result.Devices)),
			zap.Time("discovered_at", result.DiscoveredAt),
		)
		return result.Devices
	}

	v, _, _ := s.group.Do("sweep", func() (interface{}, error) {
		// A waiter queued behind a finished sweep sees a fresh cache.
		if result, ok := s.cachedResult(); ok {
			return result.Devices, nil
		}
		return s.sweep(ctx), nil
	})

	devices, _ := v.([]device.Device)
	return devices
}

// InvalidateCache drops the cached result so the next discovery probes.
func (s *Scanner) InvalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Scanner) cachedResult() (*device.ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil || len(s.cached.Devices) == 0 {
		return nil, false
	}
	if s.now().Sub(s.cached.DiscoveredAt) > s.ttl {
		return nil, false
	}
	return s.cached, true
}

// sweep performs one full pass over every configured subnet plus the
// Bluetooth branch, dedupes by host, and replaces the cache wholesale.
func (s *Scanner) sweep(ctx context.Context) []device.Device {
	started := s.now()
	s.emit(Event{Type: "scan_started"})

	seen := make(map[string]struct{})
	var devices []device.Device

	add := func(dev device.Device) {
		key := dedupKey(dev)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		devices = append(devices, dev)
		s.emit(Event{Type: "device_found", Device: &dev})
	}

	for _, prefix := range s.prefixes {
		if ctx.Err() != nil {
			break
		}
		for _, dev := range s.scheduler.Sweep(ctx, prefix, s.suffixes) {
			add(dev)
		}
	}

	if s.enum != nil {
		for _, dev := range s.enum.Enumerate(ctx) {
			add(dev)
		}
	}

	result := &device.ScanResult{
		Devices:      devices,
		DiscoveredAt: s.now(),
	}
	s.mu.Lock()
	s.cached = result
	s.mu.Unlock()

	logging.Info("discovery sweep finished",
		zap.Int("devices", len(devices)),
		zap.Duration("took", s.now().Sub(started)),
	)
	s.emit(Event{Type: "scan_finished", Count: len(devices)})

	return devices
}

// dedupKey collapses entries to one per host: the port is ignored for
// network devices so the first (highest-priority) port wins.
func dedupKey(dev device.Device) string {
	if dev.Transport == device.TransportNetwork {
		host := dev.Address
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		return "net:" + host
	}
	return "bt:" + dev.Address
}

func (s *Scanner) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}
