// Package probe tests single host:port addresses for printer-like
// reachability. Every strategy has its own timeout and every error is
// absorbed: a probe can only say "reachable" or "not reachable", never fail.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/identify"
	"github.com/tillpoint/printbridge/internal/logging"
	"github.com/tillpoint/printbridge/internal/topology"
)

const (
	// Per-strategy budgets. A probe that exceeds its budget is a
	// failure, never an escaping error.
	rawTimeout  = 2 * time.Second
	httpTimeout = 3 * time.Second
	snmpTimeout = 2 * time.Second
)

// DialFunc opens a TCP connection with a deadline. Injectable for tests.
type DialFunc func(ctx context.Context, address string, timeout time.Duration) (net.Conn, error)

// FetchFunc issues an HTTP GET and reports the status code. Injectable.
type FetchFunc func(ctx context.Context, url string) (int, error)

// SNMPFunc fetches sysDescr from a host. Injectable.
type SNMPFunc func(ctx context.Context, host string) (string, error)

// Prober classifies host:port pairs using up to three strategies chosen by
// the runtime capabilities: a raw TCP connect, vendor status endpoints over
// HTTP, and an SNMP sysDescr query.
type Prober struct {
	caps device.Capabilities

	dial  DialFunc
	fetch FetchFunc
	snmp  SNMPFunc
}

// New creates a Prober using real network primitives.
func New(caps device.Capabilities) *Prober {
	return &Prober{
		caps:  caps,
		dial:  dialTCP,
		fetch: fetchHTTP,
		snmp:  fetchSysDescr,
	}
}

// NewWithTransports creates a Prober with injected transport functions.
// Nil functions fall back to the real implementations.
func NewWithTransports(caps device.Capabilities, dial DialFunc, fetch FetchFunc, snmp SNMPFunc) *Prober {
	p := New(caps)
	if dial != nil {
		p.dial = dial
	}
	if fetch != nil {
		p.fetch = fetch
	}
	if snmp != nil {
		p.snmp = snmp
	}
	return p
}

// Check probes one host across the candidate ports in priority order and
// returns the first reachable endpoint as a device. Per-host enumeration
// stops at the first hit. The boolean is false when nothing answered.
func (p *Prober) Check(ctx context.Context, host string, ports []topology.PortCandidate) (device.Device, bool) {
	for _, pc := range ports {
		if ctx.Err() != nil {
			return device.Device{}, false
		}

		ev, reachable := p.probePort(ctx, host, pc.Port)
		if !reachable {
			continue
		}

		address := fmt.Sprintf("%s:%d", host, pc.Port)
		return device.Device{
			ID:          "net:" + address,
			DisplayName: identify.Identify(host, pc.Port, ev),
			Transport:   device.TransportNetwork,
			Address:     address,
		}, true
	}
	return device.Device{}, false
}

// probePort runs the enabled strategies in configured order, merging
// evidence. The first strategy that establishes reachability wins; later
// strategies still run only when they can add vendor evidence cheaply.
func (p *Prober) probePort(ctx context.Context, host string, port int) (identify.Evidence, bool) {
	var ev identify.Evidence

	for _, strategy := range p.caps.ProbeStrategies {
		switch strategy {
		case "raw":
			verdict := p.probeRaw(ctx, host, port)
			ev.Verdict = verdict
			// A refused connection still proves a live host: something
			// answered with a RST instead of silence.
			if verdict == identify.VerdictOpen || verdict == identify.VerdictRefused {
				return ev, true
			}
		case "http":
			if vendor, ok := p.probeVendorEndpoints(ctx, host, port); ok {
				ev.VendorEndpoint = vendor
				return ev, true
			}
		case "snmp":
			if desc, ok := p.probeSNMP(ctx, host); ok {
				ev.SNMPDescription = desc
				return ev, true
			}
		default:
			logging.Warn("unknown probe strategy", zap.String("strategy", strategy))
		}
	}

	return ev, false
}

// probeRaw attempts a plain TCP connect and classifies the outcome.
func (p *Prober) probeRaw(ctx context.Context, host string, port int) identify.Verdict {
	address := fmt.Sprintf("%s:%d", host, port)

	conn, err := p.dial(ctx, address, rawTimeout)
	if err == nil {
		conn.Close()
		return identify.VerdictOpen
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return identify.VerdictRefused
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return identify.VerdictTimedOut
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return identify.VerdictTimedOut
	}

	return identify.VerdictUnreachable
}

// probeVendorEndpoints walks the vendor table and requests each known
// status path appropriate to the port. Any HTTP-shaped answer proves a
// listener; a 2xx on a vendor path additionally yields vendor evidence.
func (p *Prober) probeVendorEndpoints(ctx context.Context, host string, port int) (string, bool) {
	listener := false

	for _, profile := range identify.Profiles() {
		if !profileServesPort(profile, port) {
			continue
		}
		for _, endpoint := range profile.Endpoints {
			url := fmt.Sprintf("http://%s:%d%s", host, port, endpoint)
			status, err := p.fetch(ctx, url)
			if err != nil {
				continue
			}
			listener = true
			if status >= 200 && status < 300 {
				return profile.Key, true
			}
		}
	}

	return "", listener
}

// profileServesPort keeps vendor endpoint probes off ports the vendor
// never uses; profiles with no port list are tried on HTTP-ish ports only.
func profileServesPort(profile identify.VendorProfile, port int) bool {
	if len(profile.Ports) == 0 {
		return port == 80 || port == 8008 || port == 8043 || port == 631
	}
	for _, p := range profile.Ports {
		if p == port {
			return true
		}
	}
	return false
}

// probeSNMP asks for sysDescr with the public community. Printers are the
// most common device class still answering SNMP v2c on a LAN.
func (p *Prober) probeSNMP(ctx context.Context, host string) (string, bool) {
	desc, err := p.snmp(ctx, host)
	if err != nil || desc == "" {
		return "", false
	}
	return desc, true
}

// --- real transport implementations ---

func dialTCP(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.DialContext(dialCtx, "tcp", address)
}

func fetchHTTP(ctx context.Context, url string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	client := http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func fetchSysDescr(ctx context.Context, host string) (string, error) {
	g := &gosnmp.GoSNMP{
		Target:    host,
		Port:      161,
		Community: "public",
		Version:   gosnmp.Version2c,
		Timeout:   snmpTimeout,
		Retries:   0,
		Context:   ctx,
	}

	if err := g.Connect(); err != nil {
		return "", err
	}
	defer g.Conn.Close()

	result, err := g.Get([]string{"1.3.6.1.2.1.1.1.0"})
	if err != nil {
		return "", err
	}
	if len(result.Variables) == 0 {
		return "", fmt.Errorf("empty SNMP response from %s", host)
	}

	switch v := result.Variables[0].Value.(type) {
	case []byte:
		return strings.TrimSpace(string(v)), nil
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", fmt.Errorf("unexpected sysDescr type %T", v)
	}
}
