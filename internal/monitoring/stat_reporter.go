package monitoring

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is one sample of process and host health, served by the health
// endpoint.
type Stats struct {
	SampledAt          time.Time `json:"sampledAt"`
	HostMemUsedPercent float64   `json:"hostMemUsedPercent"`
	ProcessCPUPercent  float64   `json:"processCpuPercent"`
	ProcessRSSBytes    uint64    `json:"processRssBytes"`
	Goroutines         int       `json:"goroutines"`
}

// StatReporter periodically samples process and host stats and publishes the
// latest snapshot for the health endpoint.
type StatReporter struct {
	proc   *process.Process
	ticker *time.Ticker
	done   chan bool

	mu       sync.RWMutex
	snapshot Stats
}

// NewStatReporter creates a new StatReporter for the current process.
func NewStatReporter() (*StatReporter, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &StatReporter{
		proc: proc,
		done: make(chan bool),
	}, nil
}

// Run starts the periodic sampling loop.
func (sr *StatReporter) Run() {
	log.Info().Msg("Starting background stat reporter...")
	sr.ticker = time.NewTicker(30 * time.Second)
	defer sr.ticker.Stop()

	// Sample once immediately on start
	sr.sample()

	for {
		select {
		case <-sr.done:
			log.Info().Msg("Stopping background stat reporter.")
			return
		case <-sr.ticker.C:
			sr.sample()
		}
	}
}

// Stop halts the sampling loop.
func (sr *StatReporter) Stop() {
	sr.done <- true
}

// Snapshot returns the most recent sample.
func (sr *StatReporter) Snapshot() Stats {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.snapshot
}

func (sr *StatReporter) sample() {
	stats := Stats{
		SampledAt:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemUsedPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("StatReporter: failed to sample host memory")
	}

	if cpuPct, err := sr.proc.CPUPercent(); err == nil {
		stats.ProcessCPUPercent = cpuPct
	}
	if memInfo, err := sr.proc.MemoryInfo(); err == nil {
		stats.ProcessRSSBytes = memInfo.RSS
	}

	sr.mu.Lock()
	sr.snapshot = stats
	sr.mu.Unlock()
}
