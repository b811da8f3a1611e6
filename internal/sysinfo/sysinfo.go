package sysinfo

import (
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// LogStartup emits a one-line host summary so capture diagnostics can be
// read against the machine they came from. Collection failures are not
// fatal; missing fields are simply omitted.
func LogStartup(log *slog.Logger) {
	attrs := []any{"arch", runtime.GOARCH}

	if info, err := host.Info(); err == nil {
		attrs = append(attrs,
			"hostname", info.Hostname,
			"os", info.Platform+" "+info.PlatformVersion,
		)
	} else {
		log.Debug("host info unavailable", "error", err)
	}

	if threads, err := cpu.Counts(true); err == nil {
		attrs = append(attrs, "cpuThreads", threads)
	}

	log.Info("host", attrs...)
}
