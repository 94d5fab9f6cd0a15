package project

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // truncate oldest entries when log exceeds this size
)

// LogEntry represents a single activity log entry.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	Detail    string    `json:"detail"`
}

// AppendLog appends a log entry to the activity log file.
// If the log exceeds maxLogEntries, the oldest entries are truncated.
func AppendLog(dir string, entry LogEntry) error {
	path := filepath.Join(dir, logFileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path from trusted project dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Truncate if needed (best-effort; errors are non-fatal).
	_ = truncateLogIfNeeded(path)

	return nil
}

// ReadLog returns the most recent limit entries, oldest first. A limit of
// zero returns every entry. Lines that do not parse are skipped.
func ReadLog(dir string, limit int) ([]LogEntry, error) {
	lines, err := readLines(filepath.Join(dir, logFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		var e LogEntry
		if json.Unmarshal([]byte(line), &e) != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// truncateLogIfNeeded rewrites the log keeping only the most recent
// maxLogEntries lines.
func truncateLogIfNeeded(path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= maxLogEntries {
		return nil
	}

	lines = lines[len(lines)-maxLogEntries:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}
