// Package plot reads gauge log files back in and renders them as a
// log-scale pressure/time chart.
package plot

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tronsgaard/gaugemonitor/internal/reading"
)

// Point is one logged reading.
type Point struct {
	Time     time.Time
	Pressure float64
}

// FileSeries is the contents of one log file.
type FileSeries struct {
	Name   string
	Points []Point
}

// ParseFile reads a whitespace-delimited log file with date, time and
// pressure columns, as written by the monitor's log sink.
func ParseFile(path string) (FileSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileSeries{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	fs := FileSeries{Name: path}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return FileSeries{}, fmt.Errorf("%s:%d: expected 3 columns, got %d", path, lineNum, len(fields))
		}

		ts, err := time.Parse(reading.TimeFormat, fields[0]+" "+fields[1])
		if err != nil {
			return FileSeries{}, fmt.Errorf("%s:%d: bad timestamp: %w", path, lineNum, err)
		}

		pressure, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return FileSeries{}, fmt.Errorf("%s:%d: bad pressure: %w", path, lineNum, err)
		}

		fs.Points = append(fs.Points, Point{Time: ts, Pressure: pressure})
	}

	if err := scanner.Err(); err != nil {
		return FileSeries{}, fmt.Errorf("read log file %s: %w", path, err)
	}
	return fs, nil
}

// ParseFiles reads several log files, failing on the first bad one.
func ParseFiles(paths []string) ([]FileSeries, error) {
	out := make([]FileSeries, 0, len(paths))
	for _, path := range paths {
		fs, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, nil
}
