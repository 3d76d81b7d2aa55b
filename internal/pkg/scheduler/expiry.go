package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/investflow/investflow/app/models"
)

// maxConcurrentUpdates bounds the fan-out of per-project saves in one sweep.
const maxConcurrentUpdates = 8

// projectStore is the slice of ProjectRepository the sweep needs.
type projectStore interface {
	ListExpiredPending(now time.Time) ([]models.Project, error)
	CompleteIfPending(id uint) (bool, error)
}

// RunExpirySweepOnce transitions every pending project past its end date to
// completed and returns the number of transitioned projects. Each project is
// written independently: one failure never aborts the rest of the batch.
// Overlapping runs are safe because the pending-status guard on the write
// excludes projects a previous run already completed.
func (m *Manager) RunExpirySweepOnce() (int, error) {
	return sweepExpiredProjects(m.projects, time.Now())
}

func sweepExpiredProjects(store projectStore, now time.Time) (int, error) {
	expired, err := store.ListExpiredPending(now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var (
		mu        sync.Mutex
		completed int
		failures  []error
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)
	for i := range expired {
		project := expired[i]
		g.Go(func() error {
			// The status flip is a guarded single-column update: a funding
			// credit landing after the list above stays intact, and a row an
			// overlapping run already completed is simply skipped.
			done, err := store.CompleteIfPending(project.ID)
			if err != nil {
				log.Errorf("[Scheduler] Failed to complete project %d: %v", project.ID, err)
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return nil
			}
			if !done {
				return nil
			}
			log.Infof("[Scheduler] Project %d (%s) marked as completed - end date reached", project.ID, project.Title)
			mu.Lock()
			completed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if completed > 0 {
		log.Infof("[Scheduler] Marked %d project(s) as completed", completed)
	}
	return completed, errors.Join(failures...)
}
