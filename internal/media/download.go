package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"vidqueue/internal/queue"
)

const progressUpdateEvery = 500 * time.Millisecond

// Downloader runs actual transfers through the native download engine and
// reports progress in queue terms. It satisfies queue.DownloadFunc via
// the Download method.
type Downloader struct {
	downloadDir string
}

func NewDownloader(downloadDir string) *Downloader {
	return &Downloader{downloadDir: downloadDir}
}

// Download fetches one URL into the download directory. onProgress receives
// byte counters, a derived transfer speed and an ETA while the transfer is
// in flight.
func (d *Downloader) Download(ctx context.Context, url string, onProgress func(queue.Progress)) (queue.Result, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(d.downloadDir + "/%(title)s [%(id)s].%(ext)s")

	dl.ProgressFunc(progressUpdateEvery, func(update ytdlp.ProgressUpdate) {
		if onProgress != nil {
			onProgress(toProgress(&update))
		}
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		return queue.Result{}, fmt.Errorf("download: %w", err)
	}
	return extractResult(result)
}

func toProgress(update *ytdlp.ProgressUpdate) queue.Progress {
	progress := queue.Progress{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
	}
	if update.TotalBytes > 0 {
		progress.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}
	if !update.Started.IsZero() {
		elapsed := time.Since(update.Started)
		if elapsed.Seconds() > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed.Seconds()
			progress.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}
	if eta := update.ETA(); eta > 0 {
		progress.ETASeconds = int(eta.Seconds())
	}
	return progress
}

func extractResult(result *ytdlp.Result) (queue.Result, error) {
	if result == nil {
		return queue.Result{}, errors.New("download produced no result")
	}
	infos, err := result.GetExtractedInfo()
	if err != nil {
		return queue.Result{}, fmt.Errorf("extracted info: %w", err)
	}
	if len(infos) == 0 {
		return queue.Result{}, errors.New("download produced no files")
	}

	out := queue.Result{}
	if infos[0].Title != nil {
		out.Title = *infos[0].Title
	}
	if infos[0].Filename != nil {
		out.Filepath = *infos[0].Filename
	}
	return out, nil
}
