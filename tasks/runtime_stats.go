// Package tasks holds the periodic reporting jobs run off the scheduler.
package tasks

import (
	"runtime"

	"modbot/model"
	"modbot/utils/database/reports"
	"modbot/utils/database/requests"
	taskstore "modbot/utils/database/tasks"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// LogRuntimeStats emits one log line of process and moderation counters.
// Failures of individual probes degrade to zero values rather than skipping
// the report.
func LogRuntimeStats(b model.Bot, logger *zap.Logger) {
	db := b.GetDB()

	var cpuPct float64
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPct = percents[0]
	}

	var memUsedMB uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsedMB = vm.Used / 1024 / 1024
	}

	pendingReports, err := reports.CountPending(db)
	if err != nil {
		logger.Warn("failed to count pending reports", zap.Error(err))
	}
	pendingRequests, err := requests.CountPending(db)
	if err != nil {
		logger.Warn("failed to count pending requests", zap.Error(err))
	}
	openTasks, err := taskstore.Count(db)
	if err != nil {
		logger.Warn("failed to count open tasks", zap.Error(err))
	}

	logger.Info("runtime stats",
		zap.Float64("cpu_pct", cpuPct),
		zap.Uint64("mem_used_mb", memUsedMB),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Int("pending_reports", pendingReports),
		zap.Int("pending_requests", pendingRequests),
		zap.Int("open_tasks", openTasks))
}
