package client

import (
	"context"
	"errors"
	"io"
	"net/http"

	fileutil "vidqueue/internal/file"
)

// FileSaver is the privileged file-write capability. When the host exposes
// one, finished downloads can be streamed straight to a chosen path instead
// of going through plain link navigation.
type FileSaver interface {
	Save(path string, r io.Reader) error
}

// DiskSaver writes through an atomic temp-file copy.
type DiskSaver struct{}

func (DiskSaver) Save(path string, r io.Reader) error {
	return fileutil.CopyAtomic(path, r) //nolint:wrapcheck
}

// FileURL returns the direct retrieval link for a finished job. The view
// uses it for plain browser navigation.
func (s *Session) FileURL(jobID string) string {
	return JoinAPIURL(s.base, "/api/jobs/"+jobID+"/file")
}

// SaveFile retrieves a finished job's file. The saver capability is probed
// at call time: when present the response body streams through it to
// destPath, otherwise the call degrades to navigating the file URL.
func (s *Session) SaveFile(ctx context.Context, jobID, destPath string) error {
	fileURL := s.FileURL(jobID)

	if s.saver == nil {
		if s.navigate == nil {
			return errors.New("no file retrieval capability available")
		}
		return s.navigate(fileURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return wrapTransport(err, fallbackFileFetch)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return s.saver.Save(destPath, resp.Body)
}
