package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one line of the panel's JSON log.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Error   string
}

type rawEntry struct {
	Level  string          `json:"level"`
	TS     json.RawMessage `json:"ts"`
	Logger string          `json:"logger"`
	Msg    string          `json:"msg"`
	Error  string          `json:"error"`
}

// Parse decodes a JSON log line. Lines that are not JSON objects with a
// message are rejected.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw rawEntry
	if err := json.Unmarshal([]byte(line), &raw); err != nil || raw.Msg == "" {
		return Entry{}, false
	}
	return Entry{
		Time:    parseTS(raw.TS),
		Level:   strings.ToLower(raw.Level),
		Logger:  raw.Logger,
		Message: raw.Msg,
		Error:   raw.Error,
	}, true
}

// parseTS accepts epoch seconds (the production encoder) or RFC 3339.
func parseTS(ts json.RawMessage) time.Time {
	if len(ts) == 0 {
		return time.Time{}
	}
	var secs float64
	if err := json.Unmarshal(ts, &secs); err == nil {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9))
	}
	var s string
	if err := json.Unmarshal(ts, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Recent returns the parsed entries among the last maxLines of the log at
// path, oldest first. Unparseable lines are skipped.
func Recent(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if e, ok := Parse(line); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
