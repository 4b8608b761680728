// Package sysstats samples host utilisation.
package sysstats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

const megabyte = 1 << 20

// Stats is one utilisation sample. Percentages carry one decimal, traffic two.
type Stats struct {
	CPU       float64 `json:"cpu"`
	RAM       float64 `json:"ram"`
	Disk      float64 `json:"disk"`
	NetSentMB float64 `json:"net_sent_mb"`
	NetRecvMB float64 `json:"net_recv_mb"`
}

// Source yields stats samples.
type Source interface {
	Snapshot(ctx context.Context) (Stats, error)
}

// Collector reads live counters from the operating system.
type Collector struct {
	Interval time.Duration
	DiskPath string
}

var _ Source = (*Collector)(nil)

// New returns a collector sampling CPU over 200ms and disk usage of /.
func New() *Collector {
	return &Collector{Interval: 200 * time.Millisecond, DiskPath: "/"}
}

// Snapshot blocks for the CPU sampling interval.
func (c *Collector) Snapshot(ctx context.Context) (Stats, error) {
	cpus, err := cpu.PercentWithContext(ctx, c.Interval, false)
	if err != nil {
		return Stats{}, fmt.Errorf("cpu: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("memory: %w", err)
	}
	du, err := disk.UsageWithContext(ctx, c.DiskPath)
	if err != nil {
		return Stats{}, fmt.Errorf("disk %s: %w", c.DiskPath, err)
	}
	nics, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return Stats{}, fmt.Errorf("network: %w", err)
	}

	s := Stats{RAM: Round(vm.UsedPercent, 1), Disk: Round(du.UsedPercent, 1)}
	if len(cpus) > 0 {
		s.CPU = Round(cpus[0], 1)
	}
	if len(nics) > 0 {
		s.NetSentMB = Round(float64(nics[0].BytesSent)/megabyte, 2)
		s.NetRecvMB = Round(float64(nics[0].BytesRecv)/megabyte, 2)
	}
	return s, nil
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// Static is a fixed Source.
type Static Stats

// Snapshot returns the fixed sample.
func (s Static) Snapshot(context.Context) (Stats, error) { return Stats(s), nil }
