package queue

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager holds the in-memory FIFO of download jobs and runs them on
// background workers. Jobs are kept in submission order; Snapshot returns
// the whole ordered list for the polling endpoint.
type Manager struct {
	mu         sync.RWMutex
	jobs       map[string]*Job
	order      []string
	cancels    map[string]context.CancelFunc
	pending    chan string
	download   DownloadFunc
	workersWG  sync.WaitGroup
	baseCtx    context.Context
	store      JobStore
	maxWorkers int
}

// NewManager creates a manager with defaults suitable for tests.
func NewManager() *Manager {
	return NewManagerWithOptions(Options{
		DataDir:                "data",
		MaxConcurrentDownloads: 1,
	})
}

// NewManagerWithOptions creates a manager with provided configuration.
func NewManagerWithOptions(opts Options) *Manager {
	if opts.MaxConcurrentDownloads <= 0 {
		opts.MaxConcurrentDownloads = 1
	}
	return &Manager{
		jobs:       make(map[string]*Job),
		cancels:    make(map[string]context.CancelFunc),
		pending:    make(chan string, pendingBuffer),
		baseCtx:    context.Background(),
		store:      NewFileStore(opts.DataDir),
		maxWorkers: opts.MaxConcurrentDownloads,
	}
}

// UseDownloader injects the download implementation. Must be set before
// Start; tests inject fakes here.
func (m *Manager) UseDownloader(fn DownloadFunc) {
	m.mu.Lock()
	m.download = fn
	m.mu.Unlock()
}

// Start launches the worker goroutines. The context bounds their lifetime;
// cancel it during shutdown and use WaitAll to observe completion.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	for range m.maxWorkers {
		m.workersWG.Add(1)
		go func() {
			defer m.workersWG.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case jobID := <-m.pending:
					m.runJob(ctx, jobID)
				}
			}
		}()
	}
}

// Add enqueues one job per non-empty URL and returns the assigned IDs.
// Blank entries are skipped after trimming; an all-blank input yields an
// empty slice and no error, matching the wire contract's "queued: 0".
func (m *Manager) Add(urls []string) ([]string, error) {
	if urls == nil {
		return nil, ErrNoURLs
	}

	jobIDs := make([]string, 0, len(urls))
	for _, raw := range urls {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		job := &Job{
			ID:        uuid.NewString(),
			URL:       url,
			Status:    StatusQueued,
			CreatedAt: time.Now(),
		}

		m.mu.Lock()
		m.jobs[job.ID] = job
		m.order = append(m.order, job.ID)
		m.mu.Unlock()

		if err := m.persistJob(job); err != nil { // best-effort
			log.Warn().Str("job_id", job.ID).Err(err).Msg("persist job failed")
		}

		select {
		case m.pending <- job.ID:
		default:
			m.failJob(job.ID, ErrQueueFull.Error())
			return jobIDs, ErrQueueFull
		}
		jobIDs = append(jobIDs, job.ID)
	}
	return jobIDs, nil
}

// Get returns a copy of the job by ID.
func (m *Manager) Get(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return copyJob(job), true
}

// Snapshot returns the full job list in submission order. The slice and its
// progress structs are copies; callers may hold them across poll cycles.
func (m *Manager) Snapshot() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make([]Job, 0, len(m.order))
	for _, id := range m.order {
		if job, ok := m.jobs[id]; ok {
			snapshot = append(snapshot, copyJob(job))
		}
	}
	return snapshot
}

// Cancel stops a job. A queued job moves straight to the error state; a
// running job has its context cancelled and settles as the worker unwinds.
// Finished jobs cannot be cancelled.
func (m *Manager) Cancel(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return ErrJobNotFound
	}
	switch job.Status {
	case StatusDone, StatusError:
		m.mu.Unlock()
		return ErrJobFinished
	case StatusRunning:
		cancel := m.cancels[jobID]
		m.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return nil
	default:
		job.Status = StatusError
		job.Error = "cancelled"
		m.mu.Unlock()
	}
	if err := m.persistJob(job); err != nil {
		log.Warn().Str("job_id", jobID).Err(err).Msg("persist cancelled job failed")
	}
	return nil
}

// WaitAll blocks until all workers finish or the context is done.
// Returns true if all workers finished, false if timed out.
func (m *Manager) WaitAll(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		m.workersWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *Manager) persistJob(job *Job) error {
	if m.store == nil {
		return nil
	}
	m.mu.RLock()
	snapshot := copyJob(job)
	m.mu.RUnlock()
	return m.store.SaveJob(context.Background(), &snapshot) //nolint:wrapcheck
}

func copyJob(job *Job) Job {
	out := *job
	if job.Progress != nil {
		progress := *job.Progress
		out.Progress = &progress
	}
	return out
}
