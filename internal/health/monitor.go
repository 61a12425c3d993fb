// Package health runs periodic reachability probes against the upstream
// providers and keeps the latest result per provider for the health endpoint.
package health

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Probe is anything that can report whether its upstream is reachable.
type Probe interface {
	Name() string
	Ping(ctx context.Context) error
}

// Status is the latest probe outcome for one provider.
type Status struct {
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// Monitor schedules the probes and records their results.
type Monitor struct {
	scheduler *gocron.Scheduler
	probes    []Probe
	interval  time.Duration

	mu     sync.RWMutex
	status map[string]Status
}

// New creates a Monitor probing at the given interval.
func New(probes []Probe, interval time.Duration) *Monitor {
	return &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		probes:    probes,
		interval:  interval,
		status:    make(map[string]Status),
	}
}

// Start runs an initial probe round and schedules the periodic job.
func (m *Monitor) Start() error {
	if len(m.probes) == 0 {
		log.Println("health: no probes configured; nothing to schedule")
		return nil
	}

	m.runProbes()

	_, err := m.scheduler.Every(m.interval).Do(m.runProbes)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future probe rounds.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// Snapshot returns a copy of the latest per-provider status.
func (m *Monitor) Snapshot() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Status, len(m.status))
	for name, s := range m.status {
		out[name] = s
	}
	return out
}

func (m *Monitor) runProbes() {
	var wg sync.WaitGroup
	for _, p := range m.probes {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			err := p.Ping(ctx)

			status := Status{Reachable: err == nil, CheckedAt: time.Now().UTC()}
			if err != nil {
				status.Error = err.Error()
				log.Printf("health: probe %s failed: %v", p.Name(), err)
			}

			m.mu.Lock()
			m.status[p.Name()] = status
			m.mu.Unlock()
		}()
	}
	wg.Wait()
}
