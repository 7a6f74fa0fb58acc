package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/models"
)

// Target is an upstream dependency probed by the Scheduler.
type Target struct {
	Name string
	URL  string
}

// Scheduler periodically probes the external services the analysis depends on
// and keeps the latest result for each.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	targets []Target
	http    *http.Client

	mu       sync.RWMutex
	statuses map[string]models.UpstreamStatus
}

// NewScheduler creates a scheduler that probes targets on the cron spec.
func NewScheduler(spec string, timeout time.Duration, targets ...Target) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		spec:     spec,
		targets:  targets,
		http:     &http.Client{Timeout: timeout},
		statuses: make(map[string]models.UpstreamStatus),
	}
}

// Run registers the probe job, runs it once and starts the cron loop.
func (s *Scheduler) Run() error {
	if _, err := s.cron.AddFunc(s.spec, s.CheckAll); err != nil {
		return err
	}
	log.Info().Str("schedule", s.spec).Int("targets", len(s.targets)).Msg("Starting upstream monitor")

	// Run once immediately on start
	go s.CheckAll()
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running probe to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped upstream monitor")
}

// CheckAll probes every target concurrently.
func (s *Scheduler) CheckAll() {
	var wg sync.WaitGroup
	for _, t := range s.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			status := s.probe(t)
			s.mu.Lock()
			s.statuses[t.Name] = status
			s.mu.Unlock()
			if !status.Healthy {
				log.Warn().Str("upstream", t.Name).Str("error", status.Error).Int("status", status.Status).Msg("Upstream unhealthy")
			}
		}(t)
	}
	wg.Wait()
}

// probe treats any answer below 500 as healthy; the root of these services
// does not necessarily serve 200.
func (s *Scheduler) probe(t Target) models.UpstreamStatus {
	status := models.UpstreamStatus{Name: t.Name, URL: t.URL, CheckedAt: time.Now().UTC()}
	start := time.Now()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, t.URL, nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	resp, err := s.http.Do(req)
	status.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	resp.Body.Close()

	status.Status = resp.StatusCode
	status.Healthy = resp.StatusCode < http.StatusInternalServerError
	return status
}

// Statuses returns the latest probe results sorted by name. Targets that were
// never probed are reported unhealthy.
func (s *Scheduler) Statuses() []models.UpstreamStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UpstreamStatus, 0, len(s.targets))
	for _, t := range s.targets {
		st, ok := s.statuses[t.Name]
		if !ok {
			st = models.UpstreamStatus{Name: t.Name, URL: t.URL, Error: "not checked yet"}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
