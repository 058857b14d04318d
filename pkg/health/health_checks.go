package health

import (
	"context"
	"runtime"
	"time"
)

// SimpleCheck always reports healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{
			Name:        name,
			Status:      StatusHealthy,
			LastChecked: time.Now(),
		}
	}
}

// BackendCheck reports whether the analysis backend answers a ping
func BackendCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Name: "backend"}
		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Reachable"
		}
		return check
	}
}

// DatasetCheck reports whether a graph has been loaded. An empty graph is
// degraded; no graph at all is unhealthy.
func DatasetCheck(getDataset func() (version uint64, nodes int)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "dataset",
			Details: make(map[string]any),
		}

		version, nodes := getDataset()
		check.Details["version"] = version
		check.Details["nodes"] = nodes

		switch {
		case version == 0:
			check.Status = StatusUnhealthy
			check.Message = "No graph loaded"
		case nodes == 0:
			check.Status = StatusDegraded
			check.Message = "Graph is empty"
		default:
			check.Status = StatusHealthy
			check.Message = "Graph loaded"
		}
		return check
	}
}

// StreamCheck degrades once change notifications have been dropped for slow
// subscribers
func StreamCheck(dropped func() uint64) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "change_stream",
			Details: make(map[string]any),
		}

		n := dropped()
		check.Details["dropped"] = n
		if n > 0 {
			check.Status = StatusDegraded
			check.Message = "Subscribers are dropping changes"
		} else {
			check.Status = StatusHealthy
			check.Message = "No dropped changes"
		}
		return check
	}
}

// MemoryCheck degrades when the heap uses most of the memory obtained from the OS
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()
		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		var usagePercent float64
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}
		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}

// RuntimeMemory reads heap usage from the runtime
func RuntimeMemory() (alloc, sys uint64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, ms.Sys
}
