// Package procStats reports resource usage of the running process.
package procStats

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/process"
)

type Usage struct {
	RSS        uint64
	CPUPercent float64
	Threads    int32
}

func Current() (Usage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, fmt.Errorf("error opening process: %w", err)
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		return Usage{}, fmt.Errorf("error reading memory info: %w", err)
	}

	cpu, err := p.CPUPercent()
	if err != nil {
		return Usage{}, fmt.Errorf("error reading cpu usage: %w", err)
	}

	threads, err := p.NumThreads()
	if err != nil {
		return Usage{}, fmt.Errorf("error reading thread count: %w", err)
	}

	return Usage{RSS: mem.RSS, CPUPercent: cpu, Threads: threads}, nil
}

// HumanBytes formats n with a binary unit suffix.
func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
