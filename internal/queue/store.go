package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	fileutil "vidqueue/internal/file"
)

// JobStore abstracts persistence for jobs. The default implementation is
// file-based; the interface allows plugging a DB-backed store later.
type JobStore interface {
	SaveJob(ctx context.Context, job *Job) error
	LoadJobs(ctx context.Context) ([]*Job, error)
}

// fileStore implements JobStore under dataDir/jobs/<id>/status.json.
type fileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) JobStore { //nolint:ireturn
	if dataDir == "" {
		dataDir = "data"
	}
	return &fileStore{dataDir: dataDir}
}

func (s *fileStore) statusPath(jobID string) string {
	return filepath.Join(s.dataDir, "jobs", jobID, "status.json")
}

func (s *fileStore) SaveJob(ctx context.Context, job *Job) error { //nolint:revive // context reserved for future use
	return fileutil.WriteJSONAtomic(s.statusPath(job.ID), job) //nolint:wrapcheck
}

func (s *fileStore) LoadJobs(ctx context.Context) ([]*Job, error) { //nolint:revive // context reserved for future use
	root := filepath.Join(s.dataDir, "jobs")
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err //nolint:wrapcheck
	}
	jobs := make([]*Job, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(s.statusPath(entry.Name())) //nolint:gosec // path is controlled by application
		if err != nil {
			continue
		}
		var job Job
		if err := json.Unmarshal(raw, &job); err != nil {
			continue
		}
		loaded := job
		jobs = append(jobs, &loaded)
	}
	return jobs, nil
}
