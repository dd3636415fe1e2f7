// Package discovery runs printer sweeps: batched concurrent probing over
// the topology tables, a TTL cache over the last result, and the optional
// Bluetooth branch.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/logging"
	"github.com/tillpoint/printbridge/internal/topology"
)

const (
	// DefaultBatchSize caps peak outstanding probes per wave. This is the
	// subsystem's only backpressure control.
	DefaultBatchSize = 20

	// DefaultBatchDelay paces consecutive waves to bound network load.
	DefaultBatchDelay = 100 * time.Millisecond
)

// HostProber tests one host against the candidate ports. Satisfied by
// *probe.Prober; narrowed to an interface so sweeps are testable with
// counting fakes.
type HostProber interface {
	Check(ctx context.Context, host string, ports []topology.PortCandidate) (device.Device, bool)
}

// Scheduler partitions a subnet's host space into fixed-size batches and
// probes each batch concurrently, waiting for full settlement before the
// next wave starts.
type Scheduler struct {
	prober     HostProber
	ports      []topology.PortCandidate
	batchSize  int
	batchDelay time.Duration

	// sleep is swappable so tests do not pay the inter-batch pacing.
	sleep func(ctx context.Context, d time.Duration)
}

// NewScheduler builds a Scheduler. Non-positive batchSize or negative
// delay fall back to the defaults.
func NewScheduler(prober HostProber, ports []topology.PortCandidate, batchSize int, batchDelay time.Duration) *Scheduler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchDelay < 0 {
		batchDelay = DefaultBatchDelay
	}
	return &Scheduler{
		prober:     prober,
		ports:      ports,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		sleep:      sleepCtx,
	}
}

// Sweep probes every host suffix under one subnet prefix. Results keep the
// suffix priority order. Probe failures only shrink the result; Sweep
// itself cannot fail.
func (s *Scheduler) Sweep(ctx context.Context, prefix string, suffixes []int) []device.Device {
	found := make([]*device.Device, len(suffixes))

	for start := 0; start < len(suffixes); start += s.batchSize {
		if ctx.Err() != nil {
			break
		}

		end := start + s.batchSize
		if end > len(suffixes) {
			end = len(suffixes)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			host := fmt.Sprintf("%s.%d", prefix, suffixes[i])
			wg.Add(1)
			go func(slot int, host string) {
				defer wg.Done()
				if dev, ok := s.prober.Check(ctx, host, s.ports); ok {
					found[slot] = &dev
				}
			}(i, host)
		}
		// Batch N+1 never starts before batch N fully settles.
		wg.Wait()

		if end < len(suffixes) {
			s.sleep(ctx, s.batchDelay)
		}
	}

	var out []device.Device
	for _, dev := range found {
		if dev != nil {
			out = append(out, *dev)
		}
	}

	logging.Debug("subnet sweep finished",
		zap.String("prefix", prefix),
		zap.Int("hosts", len(suffixes)),
		zap.Int("found", len(out)),
	)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
