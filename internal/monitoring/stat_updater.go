package monitoring

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/isdelr/placeit-be/internal/models"
)

// StatUpdater periodically samples host and process resource usage.
type StatUpdater struct {
	interval time.Duration
	proc     *process.Process
	ticker   *time.Ticker
	done     chan bool

	mu     sync.RWMutex
	latest models.ResourceSample
}

// NewStatUpdater creates a new StatUpdater for the current process.
func NewStatUpdater(interval time.Duration) *StatUpdater {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: process stats unavailable")
	}
	return &StatUpdater{
		interval: interval,
		proc:     proc,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.Sample()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.Sample()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Sample takes one reading and stores it as the latest.
func (su *StatUpdater) Sample() models.ResourceSample {
	sample := models.ResourceSample{SampledAt: time.Now().UTC()}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		sample.HostCPUPercent = pct[0]
	} else if err != nil {
		log.Debug().Err(err).Msg("StatUpdater: host cpu")
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		sample.HostMemoryPercent = vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("StatUpdater: host memory")
	}
	if su.proc != nil {
		if info, err := su.proc.MemoryInfo(); err == nil {
			sample.ProcessRSSBytes = info.RSS
		}
		if pct, err := su.proc.CPUPercent(); err == nil {
			sample.ProcessCPUPercent = pct
		}
	}

	su.mu.Lock()
	su.latest = sample
	su.mu.Unlock()
	return sample
}

// Latest returns the most recent sample.
func (su *StatUpdater) Latest() models.ResourceSample {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}
