package client

import "strings"

// ParseQueueLines turns the raw batch textarea contents into the URL list
// sent to the queue endpoint: lines are trimmed, blanks dropped, order
// preserved. Duplicates are kept; the queue accepts repeated URLs.
func ParseQueueLines(text string) []string {
	lines := strings.Split(text, "\n")
	parsed := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parsed = append(parsed, trimmed)
		}
	}
	return parsed
}
