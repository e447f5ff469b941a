package queue

import (
	"context"
	"time"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Progress mirrors the live download counters reported by the engine.
// It is only present while a job is running.
type Progress struct {
	Percent         float64 `json:"percent"`
	DownloadedBytes int64   `json:"downloaded_bytes"`
	TotalBytes      int64   `json:"total_bytes,omitempty"`
	Speed           string  `json:"speed,omitempty"`
	ETASeconds      int     `json:"eta_seconds,omitempty"`
}

// Job is one unit of download work. The lifecycle is linear:
// queued -> running -> done|error.
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title,omitempty"`
	Filepath  string    `json:"filepath,omitempty"`
	Error     string    `json:"error,omitempty"`
	Progress  *Progress `json:"progress,omitempty"`
}

// Result is what a successful download hands back to the queue.
type Result struct {
	Title    string
	Filepath string
}

// DownloadFunc performs the actual transfer for one URL. Implementations
// call onProgress from the downloading goroutine; the manager serializes
// the writes.
type DownloadFunc func(ctx context.Context, url string, onProgress func(Progress)) (Result, error)

type Options struct {
	DataDir                string
	MaxConcurrentDownloads int
}

const pendingBuffer = 1024
