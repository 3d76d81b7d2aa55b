package scheduler

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/investflow/investflow/app/repository"
)

// Manager runs the recurring background jobs of the platform. Currently this
// is the hourly expiry sweep that closes out projects past their end date.
type Manager struct {
	projects repository.ProjectRepository
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global scheduler manager (singleton). The repository
// factory must be initialized before the first call.
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(repository.GetGlobalFactory().GetProjectRepository())
	})
	return globalManager
}

// NewManager creates a scheduler manager over the given project repository.
func NewManager(projects repository.ProjectRepository) *Manager {
	return &Manager{
		projects: projects,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background workers. Safe to call more than once.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Scheduler] Starting background jobs")

	m.wg.Add(1)
	go m.expiryWorker()
}

// Stop signals the workers and waits for them to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Scheduler] Stopping background jobs...")
	close(m.stopCh)
	m.running = false
	m.wg.Wait()
	log.Info("[Scheduler] Stopped")
}

// IsRunning returns whether the manager is currently running.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// expiryWorker runs the expiry sweep every hour at minute 0. The first run is
// aligned to the next top of the hour.
func (m *Manager) expiryWorker() {
	defer m.wg.Done()

	timer := time.NewTimer(untilNextHour(time.Now()))
	defer timer.Stop()

	log.Info("[Scheduler] Expiry worker started (hourly at minute 0)")

	for {
		select {
		case <-m.stopCh:
			log.Info("[Scheduler] Expiry worker stopping")
			return
		case <-timer.C:
			if _, err := m.RunExpirySweepOnce(); err != nil {
				log.Errorf("[Scheduler] Expiry sweep error: %v", err)
			}
			timer.Reset(untilNextHour(time.Now()))
		}
	}
}

// untilNextHour returns the duration until the next top of the hour.
func untilNextHour(now time.Time) time.Duration {
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}
