// Package logtail reads the tail of the panel's log file.
//
// # Overview
//
// The panel logs JSON lines through zap. This package extracts the last N
// lines of that file without loading all of it and decodes them into Entry
// values for the activity list in the TUI.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory use is O(maxLines) regardless of file size. Lines come back in
// file order. A missing file is not an error; the log may not exist until
// the first write.
//
//	lines, err := logtail.Read("~/.local/share/pushpanel/pushpanel.log", 200)
//
// # Parsing
//
// Parse understands the fields written by the production zap encoder:
// level, ts (epoch seconds or RFC 3339), logger, msg and error. Anything else
// on the line is ignored. Recent combines Read and Parse and drops lines that
// are not log entries, such as stray output from a crashed run.
package logtail
