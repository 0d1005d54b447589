package irmux

/********************************************************************************
 *
 * Purpose:	An optional CSV log of decoded events, rotated daily by file
 *		name pattern (spec 4.I design note on observability).
 *
 * Description:	Grounded on the teacher's src/log.go log_init/log_write daily-
 *		name rotation (open-on-first-write, close-and-reopen when the
 *		formatted name changes), generalized from a fixed "2006-01-02"
 *		layout to an strftime pattern so the rotation cadence is
 *		configurable.
 *
 *******************************************************************************/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

// EventLog appends one CSV row per decoded button event to a daily-rotating
// file within dir, named by pattern (default "%Y-%m-%d.csv").
type EventLog struct {
	mu       sync.Mutex
	dir      string
	pattern  *strftime.Strftime
	fp       *os.File
	w        *csv.Writer
	openName string
}

// NewEventLog prepares logging into dir, creating it if necessary. An empty
// dir disables logging; Write becomes a no-op.
func NewEventLog(dir, pattern string) (*EventLog, error) {
	if dir == "" {
		return &EventLog{}, nil
	}
	if pattern == "" {
		pattern = "%Y-%m-%d.csv"
	}
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(dir); err != nil {
		if err := os.Mkdir(dir, 0755); err != nil {
			return nil, err
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("irmux: log location %q is not a directory", dir)
	}
	return &EventLog{dir: dir, pattern: f}, nil
}

// Write appends one row: timestamp, remote name, button name, hex code,
// repeat count.
func (l *EventLog) Write(res *DecodeResult) error {
	if l.dir == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	name := l.pattern.FormatString(now)
	if l.fp != nil && name != l.openName {
		l.close()
	}
	if l.fp == nil {
		fp, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		l.fp = fp
		l.w = csv.NewWriter(fp)
		l.openName = name
	}

	row := []string{
		now.Format(time.RFC3339),
		res.Remote.Name,
		res.Code.Name,
		fmt.Sprintf("%016x", uint64(res.Code.Code)),
		fmt.Sprintf("%d", res.Remote.Runtime.Reps),
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *EventLog) close() {
	if l.fp != nil {
		l.w.Flush()
		l.fp.Close()
		l.fp = nil
		l.w = nil
	}
}

// Close flushes and closes any currently open log file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.close()
	return nil
}
