package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// RenderWorkers picks how many frame workers to run: one per physical core
// when that can be determined, otherwise one per logical CPU.
func RenderWorkers() int {
	if count, err := cpu.Counts(false); err == nil && count > 0 {
		return count
	}
	return runtime.NumCPU()
}

// FrameBatchSize picks how many RGBA frames one batch may hold so a full
// batch stays within a modest slice of available memory. Frames are written
// out in order at the end of each batch, so this bounds peak usage.
func FrameBatchSize(width, height, workers int) int {
	const (
		minBatch    = 8
		maxBatch    = 256
		memFraction = 8 // use at most 1/8 of available memory
	)

	frameBytes := uint64(width) * uint64(height) * 4
	if frameBytes == 0 {
		return minBatch
	}

	batch := maxBatch
	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
		fit := int(vm.Available / memFraction / frameBytes)
		if fit < batch {
			batch = fit
		}
	}

	if batch < minBatch {
		batch = minBatch
	}
	if batch < workers {
		batch = workers
	}
	return batch
}
