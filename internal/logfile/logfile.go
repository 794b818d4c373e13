// Package logfile appends gauge readings to per-gauge text logs, one
// line per reading: a formatted timestamp and the pressure in mbar.
package logfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tronsgaard/gaugemonitor/internal/reading"
)

// Writer owns one open log file per gauge. Files are created under a
// log directory and named after the session start time, so restarts
// never clobber an earlier run.
type Writer struct {
	files  map[int]*os.File
	logger *slog.Logger
}

// NewWriter creates the log directory if needed and opens one file per
// gauge id.
func NewWriter(dir string, gaugeIDs []int, start time.Time, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}

	datestr := start.Format("2006-01-02 15-04-05")
	w := &Writer{
		files:  make(map[int]*os.File, len(gaugeIDs)),
		logger: logger,
	}
	for _, id := range gaugeIDs {
		name := filepath.Join(dir, fmt.Sprintf("%s_gauge%d.txt", datestr, id))
		logger.Info("opening file for logging", "file", name)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("open log file %s: %w", name, err)
		}
		w.files[id] = f
	}
	return w, nil
}

// UpdateSeries appends one reading line to the gauge's log file.
// Missing readings are written as NaN so gaps stay visible in the log.
func (w *Writer) UpdateSeries(gauge int, t time.Time, pressure, trend float64) {
	f, ok := w.files[gauge]
	if !ok {
		return
	}
	line := fmt.Sprintf("%s    %.5e\n", t.Format(reading.TimeFormat), pressure)
	if _, err := f.WriteString(line); err != nil {
		w.logger.Error("log write failed", "gauge", gauge, "err", err)
	}
}

// Close closes all open log files.
func (w *Writer) Close() error {
	var firstErr error
	for id, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close log for gauge %d: %w", id, err)
		}
	}
	return firstErr
}
