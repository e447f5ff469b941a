package queue

import (
	"context"
	"fmt"
	"sort"
)

// LoadFromDisk scans data/jobs and loads jobs into memory in creation order.
// A job left running by a previous run is marked as error; jobs still queued
// are re-enqueued so the workers pick them up again.
func (m *Manager) LoadFromDisk() error {
	if m.store == nil {
		return nil
	}
	loaded, err := m.store.LoadJobs(context.Background())
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].CreatedAt.Before(loaded[j].CreatedAt) })

	for _, job := range loaded {
		if job.Status == StatusRunning {
			job.Status = StatusError
			job.Error = "interrupted by restart"
			job.Progress = nil
			_ = m.persistJob(job)
		}
		m.mu.Lock()
		m.jobs[job.ID] = job
		m.order = append(m.order, job.ID)
		m.mu.Unlock()

		if job.Status == StatusQueued {
			select {
			case m.pending <- job.ID:
			default:
				m.failJob(job.ID, ErrQueueFull.Error())
			}
		}
	}
	return nil
}
