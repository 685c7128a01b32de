package utils

import (
	"log"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
)

// GetOptimalWorkerCount determines the in-batch concurrency based on config
// and system resources.
func GetOptimalWorkerCount(configValue string) int {
	// 1. Check for manual override
	if manualWorkers, err := strconv.Atoi(configValue); err == nil && manualWorkers > 0 {
		log.Printf("Using manually configured number of workers: %d", manualWorkers)
		return manualWorkers
	}

	// 2. If set to "auto" or invalid, calculate automatically
	if configValue != "auto" {
		log.Printf("WARN: Invalid workers value '%s'. Defaulting to 'auto' mode.", configValue)
	}

	// We use logical cores (true) because tracking is mostly I/O bound
	// and hyper-threading can be beneficial.
	cpuCores, err := cpu.Counts(true)
	if err != nil {
		log.Printf("WARN: Could not detect CPU cores. Falling back to default: %d workers.", 2)
		return 2
	}

	// Half of the available cores: each GameStop URL spawns its own
	// browser, so this leaves headroom for the rest of the system.
	optimalCount := cpuCores / 2
	if optimalCount < 1 {
		optimalCount = 1
	}
	if optimalCount > 16 {
		optimalCount = 16
	}

	log.Printf("System has %d logical cores. Automatically setting number of workers to: %d", cpuCores, optimalCount)
	return optimalCount
}
