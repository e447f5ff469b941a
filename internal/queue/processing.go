package queue

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// runJob executes a single job on a worker goroutine. Jobs cancelled while
// still pending are skipped: Cancel flips their status before the worker
// pulls the ID off the channel.
func (m *Manager) runJob(ctx context.Context, jobID string) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok || job.Status != StatusQueued {
		m.mu.Unlock()
		return
	}
	job.Status = StatusRunning
	job.Progress = &Progress{}
	jobURL := job.URL
	download := m.download

	jobCtx, cancel := context.WithCancel(ctx)
	m.cancels[jobID] = cancel
	m.mu.Unlock()
	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.cancels, jobID)
		m.mu.Unlock()
	}()

	if err := m.persistJob(job); err != nil {
		log.Warn().Str("job_id", jobID).Err(err).Msg("persist running state failed")
	}

	if download == nil {
		m.failJob(jobID, "no downloader configured")
		return
	}

	log.Info().Str("job_id", jobID).Str("url", jobURL).Msg("download started")
	result, err := download(jobCtx, jobURL, func(p Progress) {
		m.mu.Lock()
		if current, ok := m.jobs[jobID]; ok && current.Status == StatusRunning {
			progress := p
			current.Progress = &progress
		}
		m.mu.Unlock()
	})
	if err != nil {
		msg := err.Error()
		if errors.Is(jobCtx.Err(), context.Canceled) && !errors.Is(ctx.Err(), context.Canceled) {
			msg = "cancelled"
		}
		log.Warn().Str("job_id", jobID).Str("url", jobURL).Err(err).Msg("download failed")
		m.failJob(jobID, msg)
		return
	}

	m.mu.Lock()
	job.Status = StatusDone
	job.Title = result.Title
	job.Filepath = result.Filepath
	job.Progress = nil
	m.mu.Unlock()
	if err := m.persistJob(job); err != nil {
		log.Warn().Str("job_id", jobID).Err(err).Msg("persist final state failed")
	}
	log.Info().Str("job_id", jobID).Str("title", result.Title).Msg("download finished")
}

func (m *Manager) failJob(jobID, msg string) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return
	}
	job.Status = StatusError
	job.Error = msg
	job.Progress = nil
	m.mu.Unlock()
	if err := m.persistJob(job); err != nil {
		log.Warn().Str("job_id", jobID).Err(err).Msg("persist failed state failed")
	}
}
