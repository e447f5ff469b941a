package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultProbeTimeout = 60 * time.Second

// Prober shells out to the yt-dlp binary for a metadata dump. Downloads go
// through the native engine; only the full format/thumbnail listing needs
// the external process.
type Prober struct {
	binary  string
	timeout time.Duration
	run     func(ctx context.Context, binary string, args ...string) ([]byte, []byte, error)
}

func NewProber() *Prober {
	return &Prober{
		binary:  "yt-dlp",
		timeout: defaultProbeTimeout,
		run:     runCommand,
	}
}

// SetTimeout bounds a single metadata extraction.
func (p *Prober) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		p.timeout = timeout
	}
}

// UseRunner injects the process runner. Tests swap the external binary out.
func (p *Prober) UseRunner(run func(ctx context.Context, binary string, args ...string) ([]byte, []byte, error)) {
	p.run = run
}

// ExtractInfo dumps metadata for a single URL without downloading anything.
func (p *Prober) ExtractInfo(ctx context.Context, rawURL string) (*Info, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, errors.New("invalid URL")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stdout, stderr, err := p.run(ctx, p.binary, "-J", "--no-warnings", "--", url)
	if err != nil {
		log.Warn().Str("url", url).Err(err).Msg("metadata extraction failed")
		if msg := lastLine(stderr); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("extract info: %w", err)
	}

	var info Info
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &info, nil
}

func runCommand(ctx context.Context, binary string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
