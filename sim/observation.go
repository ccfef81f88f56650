package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// timestampLayout is the CSV TIMESTAMP format, "YYYY.MM.DD-HH:MM:SS:ffffff",
// with the final field separator normalized from ':' to '.' before
// parsing — Go's reference-time layout only recognizes a fractional
// second introduced by '.' or ',' (see SPEC_FULL.md §4.B).
const timestampLayout = "2006.01.02-15:04:05.000000"

// Observation is a single (timestamp, cpu usage) sample.
type Observation struct {
	Time time.Time
	CPU  float64
}

// Trace is a sorted, de-duplicated, ascending sequence of Observations.
type Trace struct {
	obs []Observation
}

// NewTrace builds a Trace from unsorted, possibly-duplicated observations:
// duplicates at the same timestamp collapse to the last reading, and the
// result is sorted ascending by time.
func NewTrace(obs []Observation) *Trace {
	byTime := make(map[int64]Observation, len(obs))
	order := make([]int64, 0, len(obs))
	for _, o := range obs {
		key := o.Time.UnixMicro()
		if _, exists := byTime[key]; !exists {
			order = append(order, key)
		}
		byTime[key] = o // last write wins
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]Observation, len(order))
	for i, key := range order {
		out[i] = byTime[key]
	}
	return &Trace{obs: out}
}

// Clone returns an independent deep copy, so concurrent tuning workers
// replaying the same source trace never race on ClampAbove's in-place
// mutation.
func (t *Trace) Clone() *Trace {
	out := make([]Observation, len(t.obs))
	copy(out, t.obs)
	return &Trace{obs: out}
}

// Len returns the number of observations in the trace.
func (t *Trace) Len() int { return len(t.obs) }

// At returns the observation at index i.
func (t *Trace) At(i int) Observation { return t.obs[i] }

// First returns the earliest observation's time. Panics if the trace is empty.
func (t *Trace) First() time.Time { return t.obs[0].Time }

// Last returns the latest observation's time. Panics if the trace is empty.
func (t *Trace) Last() time.Time { return t.obs[len(t.obs)-1].Time }

// Range returns the indices [lo, hi) of observations with
// start <= Time <= end (inclusive on both ends, per SPEC_FULL.md §4.C).
func (t *Trace) Range(start, end time.Time) (lo, hi int) {
	lo = sort.Search(len(t.obs), func(i int) bool { return !t.obs[i].Time.Before(start) })
	hi = sort.Search(len(t.obs), func(i int) bool { return t.obs[i].Time.After(end) })
	return lo, hi
}

// ClampAbove sets CPU to limit, in place, for every observation in
// [lo, hi) whose CPU exceeds limit. The mutation persists in the
// underlying trace for subsequent reads (SPEC_FULL.md §4.C, Open Question 1).
func (t *Trace) ClampAbove(lo, hi int, limit float64) {
	for i := lo; i < hi; i++ {
		if t.obs[i].CPU > limit {
			t.obs[i].CPU = limit
		}
	}
}

// ValueAt returns the CPU reading of the latest observation at or before t.
// ok is false if t precedes the trace's first observation.
func (t *Trace) ValueAt(at time.Time) (cpu float64, ok bool) {
	idx := sort.Search(len(t.obs), func(i int) bool { return t.obs[i].Time.After(at) }) - 1
	if idx < 0 {
		return 0, false
	}
	return t.obs[idx].CPU, true
}

// Slice returns a copy of the observations in [lo, hi).
func (t *Trace) Slice(lo, hi int) []Observation {
	out := make([]Observation, hi-lo)
	copy(out, t.obs[lo:hi])
	return out
}

// WriteCSV writes the full trace back out with header
// TIMESTAMP,CPU_USAGE_ACTUAL, preserving the timestamp format.
func (t *Trace) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vasim: writing trace: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"TIMESTAMP", "CPU_USAGE_ACTUAL"}); err != nil {
		return err
	}
	for _, o := range t.obs {
		row := []string{
			formatTimestamp(o.Time),
			strconv.FormatFloat(o.CPU, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatTimestamp(tt time.Time) string {
	s := tt.Format(timestampLayout)
	// Undo the '.' we had to use for parsing so the round-tripped file
	// keeps the source format's literal ':' before the microseconds.
	if idx := strings.LastIndex(s, "."); idx != -1 {
		s = s[:idx] + ":" + s[idx+1:]
	}
	return s
}

func parseTimestamp(raw string) (time.Time, error) {
	idx := strings.LastIndex(raw, ":")
	if idx == -1 {
		return time.Time{}, fmt.Errorf("no fractional-second separator in %q", raw)
	}
	normalized := raw[:idx] + "." + raw[idx+1:]
	return time.Parse(timestampLayout, normalized)
}

// LoadTrace walks dir recursively, reads every *.csv file whose stem ends
// in "perf_event_log", parses TIMESTAMP/CPU_USAGE_ACTUAL rows, skips
// malformed rows with a warning, and returns the merged, de-duplicated,
// sorted Trace. Returns ErrNoTraceData if no matching file or no valid
// row is found.
func LoadTrace(dir string, log *logrus.Logger) (*Trace, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.HasSuffix(stem, "perf_event_log") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vasim: walking %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no perf_event_log csv files under %s", ErrNoTraceData, dir)
	}

	var obs []Observation
	for _, p := range paths {
		rows, err := readPerfEventLog(p, log)
		if err != nil {
			log.WithError(err).WithField("path", p).Warn("skipping unreadable trace file")
			continue
		}
		obs = append(obs, rows...)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: zero valid rows parsed from %s", ErrNoTraceData, dir)
	}

	return NewTrace(obs), nil
}

func readPerfEventLog(path string, log *logrus.Logger) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // short rows are skipped below, not fatal to the file
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	timeCol, cpuCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "TIMESTAMP":
			timeCol = i
		case "CPU_USAGE_ACTUAL":
			cpuCol = i
		}
	}
	if timeCol == -1 || cpuCol == -1 {
		return nil, fmt.Errorf("missing TIMESTAMP/CPU_USAGE_ACTUAL columns")
	}

	var out []Observation
	lineNum := 1
	for {
		lineNum++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, malformed := err.(*csv.ParseError); malformed {
				log.WithFields(logrus.Fields{"path": path, "line": lineNum}).WithError(err).Warn("skipping malformed row")
				continue
			}
			break
		}
		if timeCol >= len(record) || cpuCol >= len(record) {
			log.WithFields(logrus.Fields{"path": path, "line": lineNum}).Warn("skipping short row")
			continue
		}
		ts, err := parseTimestamp(record[timeCol])
		if err != nil {
			log.WithFields(logrus.Fields{"path": path, "line": lineNum}).WithError(err).Warn("skipping row with unparseable timestamp")
			continue
		}
		cpu, err := strconv.ParseFloat(strings.TrimSpace(record[cpuCol]), 64)
		if err != nil {
			log.WithFields(logrus.Fields{"path": path, "line": lineNum}).WithError(err).Warn("skipping row with unparseable cpu value")
			continue
		}
		out = append(out, Observation{Time: ts, CPU: cpu})
	}
	return out, nil
}
