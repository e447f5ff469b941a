package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManagerWithOptions(Options{
		DataDir:                t.TempDir(),
		MaxConcurrentDownloads: 1,
	})
}

func waitForStatus(t *testing.T, m *Manager, jobID string, want ...Status) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := m.Get(jobID); ok {
			for _, status := range want {
				if job.Status == status {
					return job
				}
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for job %s to reach %v", jobID, want)
	return Job{}
}

func TestAddSkipsBlankURLs(t *testing.T) {
	m := newTestManager(t)

	ids, err := m.Add([]string{"  https://e.org/v1  ", "", "   ", "https://e.org/v2"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(ids))
	}

	snapshot := m.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 items in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].URL != "https://e.org/v1" || snapshot[1].URL != "https://e.org/v2" {
		t.Fatalf("urls not trimmed or out of order: %+v", snapshot)
	}
	for _, item := range snapshot {
		if item.Status != StatusQueued {
			t.Fatalf("expected queued status, got %s", item.Status)
		}
	}
}

func TestAddNilInput(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Add(nil); !errors.Is(err, ErrNoURLs) {
		t.Fatalf("expected ErrNoURLs, got %v", err)
	}
}

func TestJobLifecycleDone(t *testing.T) {
	m := newTestManager(t)
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		onProgress(Progress{Percent: 50, DownloadedBytes: 512, TotalBytes: 1024})
		return Result{Title: "clip", Filepath: "/downloads/clip.mp4"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	ids, err := m.Add([]string{"https://e.org/v"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	job := waitForStatus(t, m, ids[0], StatusDone, StatusError)
	if job.Status != StatusDone {
		t.Fatalf("expected done, got %s (%s)", job.Status, job.Error)
	}
	if job.Title != "clip" || job.Filepath != "/downloads/clip.mp4" {
		t.Fatalf("result fields missing: %+v", job)
	}
	if job.Progress != nil {
		t.Fatalf("progress must be cleared on terminal status")
	}
}

func TestJobLifecycleError(t *testing.T) {
	m := newTestManager(t)
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		return Result{}, errors.New("resolver blew up")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	ids, _ := m.Add([]string{"https://e.org/v"})
	job := waitForStatus(t, m, ids[0], StatusDone, StatusError)
	if job.Status != StatusError || job.Error != "resolver blew up" {
		t.Fatalf("expected error state with message, got %+v", job)
	}
}

func TestProgressVisibleWhileRunning(t *testing.T) {
	m := newTestManager(t)
	release := make(chan struct{})
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		onProgress(Progress{Percent: 25, DownloadedBytes: 256, TotalBytes: 1024, Speed: "1.0MB/s"})
		<-release
		return Result{Title: "t"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	ids, _ := m.Add([]string{"https://e.org/v"})
	job := waitForStatus(t, m, ids[0], StatusRunning)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		job, _ = m.Get(ids[0])
		if job.Progress != nil && job.Progress.Percent == 25 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if job.Progress == nil || job.Progress.Percent != 25 || job.Progress.Speed != "1.0MB/s" {
		t.Fatalf("expected live progress, got %+v", job.Progress)
	}
	close(release)
	waitForStatus(t, m, ids[0], StatusDone)
}

func TestCancelQueuedJob(t *testing.T) {
	m := newTestManager(t)
	// no Start: job stays queued

	ids, _ := m.Add([]string{"https://e.org/v"})
	if err := m.Cancel(ids[0]); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	job, _ := m.Get(ids[0])
	if job.Status != StatusError || job.Error != "cancelled" {
		t.Fatalf("expected cancelled error state, got %+v", job)
	}

	if err := m.Cancel(ids[0]); !errors.Is(err, ErrJobFinished) {
		t.Fatalf("expected ErrJobFinished on double cancel, got %v", err)
	}
	if err := m.Cancel("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestCancelRunningJob(t *testing.T) {
	m := newTestManager(t)
	started := make(chan struct{})
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	ids, _ := m.Add([]string{"https://e.org/v"})
	<-started
	if err := m.Cancel(ids[0]); err != nil {
		t.Fatalf("cancel running: %v", err)
	}
	job := waitForStatus(t, m, ids[0], StatusError)
	if job.Error != "cancelled" {
		t.Fatalf("expected cancelled message, got %q", job.Error)
	}
}

func TestCancelledWhilePendingIsNeverRun(t *testing.T) {
	m := newTestManager(t)
	ran := make(chan string, 1)
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		ran <- url
		return Result{}, nil
	})

	ids, _ := m.Add([]string{"https://e.org/v"})
	if err := m.Cancel(ids[0]); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	select {
	case url := <-ran:
		t.Fatalf("cancelled job was executed: %s", url)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWaitAllStopsWorkers(t *testing.T) {
	m := newTestManager(t)
	m.UseDownloader(func(ctx context.Context, url string, onProgress func(Progress)) (Result, error) {
		return Result{}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if !m.WaitAll(waitCtx) {
		t.Fatalf("expected workers to finish after base context cancel")
	}
}

func TestPersistAndLoadFromDisk(t *testing.T) {
	dataDir := t.TempDir()
	m := NewManagerWithOptions(Options{DataDir: dataDir, MaxConcurrentDownloads: 1})

	running := &Job{ID: "j1", URL: "https://e.org/a", Status: StatusRunning, CreatedAt: time.Now().Add(-time.Minute)}
	done := &Job{ID: "j2", URL: "https://e.org/b", Status: StatusDone, CreatedAt: time.Now(), Title: "b", Filepath: "/d/b.mp4"}
	if err := m.persistJob(running); err != nil {
		t.Fatalf("persist j1: %v", err)
	}
	if err := m.persistJob(done); err != nil {
		t.Fatalf("persist j2: %v", err)
	}

	m2 := NewManagerWithOptions(Options{DataDir: dataDir, MaxConcurrentDownloads: 1})
	if err := m2.LoadFromDisk(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if job, ok := m2.Get("j1"); !ok || job.Status != StatusError || job.Error != "interrupted by restart" {
		t.Fatalf("expected j1 marked interrupted, got %+v ok=%v", job, ok)
	}
	if job, ok := m2.Get("j2"); !ok || job.Status != StatusDone || job.Filepath != "/d/b.mp4" {
		t.Fatalf("expected j2 intact, got %+v ok=%v", job, ok)
	}

	snapshot := m2.Snapshot()
	if len(snapshot) != 2 || snapshot[0].ID != "j1" || snapshot[1].ID != "j2" {
		t.Fatalf("expected creation order preserved, got %+v", snapshot)
	}
}
