package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// EnvAPIBase configures the API base origin for the whole process. It is
// read once when the session is created; there is no hot reload.
const EnvAPIBase = "VIDQUEUE_API_BASE"

const defaultPollInterval = 2 * time.Second

// Fallback error messages used when a request fails without carrying any
// message of its own.
const (
	msgNoThumbnail    = "No thumbnail returned"
	msgNoStreamURL    = "No stream URL returned"
	fallbackThumbnail = "Thumbnail request failed"
	fallbackPreview   = "Preview request failed"
	fallbackDownload  = "Download request failed"
	fallbackQueueAdd  = "Queue request failed"
	fallbackCancelJob = "Cancel request failed"
	fallbackFileFetch = "File request failed"
)

// Options configures a Session. The zero value works against a same-origin
// backend with the default poll cadence.
type Options struct {
	// BaseURL overrides the API base origin. Empty falls back to the
	// VIDQUEUE_API_BASE environment variable, then to "/".
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// PollInterval defaults to 2 seconds.
	PollInterval time.Duration
	// OnChange is invoked after every state mutation. Views hang their
	// re-render off it; tests use it as a spy.
	OnChange func()
	// Saver is the privileged file-write capability. Optional.
	Saver FileSaver
	// Navigate is the degraded retrieval path used when no Saver is
	// present: it receives the file URL to open. Optional.
	Navigate func(fileURL string) error
}

// Session holds the UI-visible state and the dispatchers that mutate it.
// All writes are serialized through one mutex; each dispatcher owns its
// state slice and only ever clears the shared error slot plus its own
// fields, so interleaved responses cannot corrupt a neighbour's slice.
type Session struct {
	httpc        *http.Client
	base         string
	pollInterval time.Duration
	onChange     func()
	saver        FileSaver
	navigate     func(string) error

	mu           sync.Mutex
	url          string
	queueText    string
	thumbnailURL string
	streamURL    string
	errMsg       string
	queue        []Item
	closed       bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession creates the session and starts its queue poller. Close stops
// the poller and freezes all state; both happen exactly once.
func NewSession(opts Options) *Session {
	base := opts.BaseURL
	if base == "" {
		base = os.Getenv(EnvAPIBase)
	}
	if base == "" {
		base = "/"
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	s := &Session{
		httpc:        httpc,
		base:         base,
		pollInterval: interval,
		onChange:     opts.OnChange,
		saver:        opts.Saver,
		navigate:     opts.Navigate,
		done:         make(chan struct{}),
	}
	go s.pollLoop()
	return s
}

// Close tears the session down. The liveness flag flips first, so a
// response landing after Close never mutates state, even if its request
// was issued before.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

// SetURL updates the single-URL input.
func (s *Session) SetURL(url string) { s.apply(func() { s.url = url }) }

// SetQueueText updates the raw batch text.
func (s *Session) SetQueueText(text string) { s.apply(func() { s.queueText = text }) }

func (s *Session) URL() string          { return s.read(func() string { return s.url }) }
func (s *Session) QueueText() string    { return s.read(func() string { return s.queueText }) }
func (s *Session) ThumbnailURL() string { return s.read(func() string { return s.thumbnailURL }) }
func (s *Session) StreamURL() string    { return s.read(func() string { return s.streamURL }) }
func (s *Session) Err() string          { return s.read(func() string { return s.errMsg }) }

// Queue returns the last polled snapshot.
func (s *Session) Queue() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.queue...)
}

// FetchThumbnail asks the backend for the best thumbnail of the current
// URL. The previous thumbnail is cleared before the request goes out so
// stale media is never shown as a fresh result.
func (s *Session) FetchThumbnail(ctx context.Context) {
	s.apply(func() {
		s.errMsg = ""
		s.thumbnailURL = ""
	})
	payload, err := s.postJSON(ctx, "/api/thumbnail", map[string]any{"url": s.URL()}, fallbackThumbnail)
	if err != nil {
		s.apply(func() { s.errMsg = err.Error() })
		return
	}
	thumb, _ := payload["thumbnail"].(string)
	if thumb == "" {
		s.apply(func() { s.errMsg = msgNoThumbnail })
		return
	}
	s.apply(func() { s.thumbnailURL = thumb })
}

// FetchPreview asks the backend for a direct stream URL of the current URL.
func (s *Session) FetchPreview(ctx context.Context) {
	s.apply(func() {
		s.errMsg = ""
		s.streamURL = ""
	})
	payload, err := s.postJSON(ctx, "/api/preview", map[string]any{"url": s.URL()}, fallbackPreview)
	if err != nil {
		s.apply(func() { s.errMsg = err.Error() })
		return
	}
	stream, _ := payload["stream_url"].(string)
	if stream == "" {
		s.apply(func() { s.errMsg = msgNoStreamURL })
		return
	}
	s.apply(func() { s.streamURL = stream })
}

// Download enqueues the current URL. The response body is not consumed;
// the queue poller reflects the new job on its next tick.
func (s *Session) Download(ctx context.Context) {
	s.apply(func() { s.errMsg = "" })
	if _, err := s.postJSON(ctx, "/api/download", map[string]any{"url": s.URL()}, fallbackDownload); err != nil {
		s.apply(func() { s.errMsg = err.Error() })
	}
}

// AddToQueue enqueues every non-blank line of the batch text. An input that
// parses to nothing is a silent no-op: no request is issued at all.
func (s *Session) AddToQueue(ctx context.Context) {
	urls := ParseQueueLines(s.QueueText())
	if len(urls) == 0 {
		return
	}
	s.apply(func() { s.errMsg = "" })
	if _, err := s.postJSON(ctx, "/api/queue/add", map[string]any{"urls": urls}, fallbackQueueAdd); err != nil {
		s.apply(func() { s.errMsg = err.Error() })
	}
}

// Cancel resets the displayed input and preview state. It is strictly
// local: no request is issued and nothing already in flight is aborted, so
// a late response may still repopulate the fields it clears.
func (s *Session) Cancel() {
	s.apply(func() {
		s.url = ""
		s.thumbnailURL = ""
		s.streamURL = ""
	})
}

// CancelJob asks the backend to stop a queued or running job. This is the
// remote affordance, deliberately separate from the local Cancel; the
// poller reflects the resulting state change.
func (s *Session) CancelJob(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, JoinAPIURL(s.base, "/api/jobs/"+jobID), nil)
	if err != nil {
		return err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return wrapTransport(err, fallbackCancelJob)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return nil
}

// pollLoop drives the queue poller: one immediate poll, then one per tick.
// A tick only fires after the previous poll returned, so polls never
// overlap; a slow response simply delays the next one.
func (s *Session) pollLoop() {
	s.pollOnce()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

// pollOnce fetches the queue snapshot and replaces local state wholesale.
// Every failure mode (transport, bad status, malformed body, missing
// field) is swallowed: the previous snapshot stays up and the next tick
// tries again.
func (s *Session) pollOnce() {
	req, err := http.NewRequest(http.MethodGet, JoinAPIURL(s.base, "/api/queue"), nil)
	if err != nil {
		return
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	var payload struct {
		Queue []Item `json:"queue"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Queue == nil {
		return
	}
	s.apply(func() { s.queue = payload.Queue })
}

// postJSON issues one POST and maps the three failure classes into a single
// error message: transport errors keep their own text (or the fallback),
// non-success statuses surface the parsed detail or "Error <status>", and
// a malformed success body degrades to an empty payload so callers treat
// it as a missing field.
func (s *Session) postJSON(ctx context.Context, path string, body any, fallback string) (map[string]any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, JoinAPIURL(s.base, path), bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, wrapTransport(err, fallback)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusErrorFromBody(resp.StatusCode, raw)
	}

	payload := map[string]any{}
	_ = json.Unmarshal(raw, &payload)
	return payload, nil
}

// apply runs a state mutation behind the liveness gate. After Close it is
// a no-op, which is what keeps late responses from touching dead state.
func (s *Session) apply(mutate func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	mutate()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Session) read(get func() string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get()
}

type apiError struct{ msg string }

func (e *apiError) Error() string { return e.msg }

func statusErrorFromBody(status int, raw []byte) error {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return &apiError{msg: body.Detail}
	}
	return &apiError{msg: fmt.Sprintf("Error %d", status)}
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	return statusErrorFromBody(resp.StatusCode, raw)
}

func wrapTransport(err error, fallback string) error {
	if err == nil || err.Error() == "" {
		return &apiError{msg: fallback}
	}
	return &apiError{msg: err.Error()}
}
