// Package sysinfo answers pool-sizing questions from host resources.
package sysinfo

import (
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultWorkers returns the worker count used when none is configured:
// the number of logical CPU cores.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// LogResources writes one startup line describing the host.
func LogResources(logger *slog.Logger) {
	attrs := []any{"cores", DefaultWorkers()}

	if vm, err := mem.VirtualMemory(); err == nil {
		attrs = append(attrs,
			"mem_total_mb", vm.Total/(1024*1024),
			"mem_available_mb", vm.Available/(1024*1024),
		)
	}

	logger.Info("host resources", attrs...)
}
