// Package sysmon samples host resource usage for the dashboard and probes
// the hardware the simulated assessment stages are named after.
package sysmon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
	syscpu "golang.org/x/sys/cpu"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext is Sample bounded by ctx.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Hardware describes the host as seen by the probes. Zero fields mean the
// corresponding probe failed.
type Hardware struct {
	TotalMemory uint64
	LogicalCPUs int
	CPUModel    string
	CPUFeatures []string
	DiskPath    string
	DiskTotal   uint64
	DiskFSType  string
}

// ProbeHardware runs the memory, processor and disk probes concurrently.
// A failing probe does not stop the others: their errors are joined into the
// returned error and Hardware is filled with whatever succeeded.
func ProbeHardware(ctx context.Context, diskPath string) (Hardware, error) {
	hw := Hardware{DiskPath: diskPath}
	var g errgroup.Group
	var memErr, cpuErr, diskErr error

	var vm *mem.VirtualMemoryStat
	g.Go(func() error {
		vm, memErr = mem.VirtualMemoryWithContext(ctx)
		return nil
	})

	var infos []cpu.InfoStat
	var logical int
	g.Go(func() error {
		if logical, cpuErr = cpu.CountsWithContext(ctx, true); cpuErr != nil {
			return nil
		}
		infos, cpuErr = cpu.InfoWithContext(ctx)
		return nil
	})

	var usage *disk.UsageStat
	g.Go(func() error {
		usage, diskErr = disk.UsageWithContext(ctx, diskPath)
		return nil
	})

	_ = g.Wait()
	err := errors.Join(probeErr("memory", memErr), probeErr("processor", cpuErr), probeErr("disk", diskErr))
	if vm != nil {
		hw.TotalMemory = vm.Total
	}
	hw.LogicalCPUs = logical
	if hw.LogicalCPUs == 0 {
		hw.LogicalCPUs = runtime.NumCPU()
	}
	if len(infos) > 0 {
		hw.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if usage != nil {
		hw.DiskTotal = usage.Total
		hw.DiskFSType = usage.Fstype
	}
	hw.CPUFeatures = CPUFeatures()
	return hw, err
}

func probeErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s probe: %w", name, err)
}

// CPUFeatures lists the vector extensions reported by the processor.
func CPUFeatures() []string {
	var f []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if syscpu.X86.HasSSE42 {
			f = append(f, "SSE4.2")
		}
		if syscpu.X86.HasAVX {
			f = append(f, "AVX")
		}
		if syscpu.X86.HasAVX2 {
			f = append(f, "AVX2")
		}
		if syscpu.X86.HasAVX512F {
			f = append(f, "AVX-512")
		}
	case "arm64":
		if syscpu.ARM64.HasASIMD {
			f = append(f, "NEON")
		}
		if syscpu.ARM64.HasSVE {
			f = append(f, "SVE")
		}
	}
	return f
}
