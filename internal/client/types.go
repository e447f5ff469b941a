package client

// Item is one entry of the polled queue snapshot as reported by the
// backend. The client never mutates items; each poll replaces the whole
// slice.
type Item struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Status   string    `json:"status"`
	Title    string    `json:"title,omitempty"`
	Filepath string    `json:"filepath,omitempty"`
	Error    string    `json:"error,omitempty"`
	Progress *Progress `json:"progress,omitempty"`
}

type Progress struct {
	Percent         float64 `json:"percent"`
	DownloadedBytes int64   `json:"downloaded_bytes"`
	TotalBytes      int64   `json:"total_bytes,omitempty"`
	Speed           string  `json:"speed,omitempty"`
	ETASeconds      int     `json:"eta_seconds,omitempty"`
}

// Job lifecycle states as they appear on the wire.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)
