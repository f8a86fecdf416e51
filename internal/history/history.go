// Package history keeps an append-only CSV record of every returned match.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/iishyfishyy/vibematch/internal/search"
)

// HistoryFileName is the default results file, relative to the working directory
const HistoryFileName = "results.csv"

// Header is the first line of every results file
var Header = []string{"name", "description", "score", "query", "time_taken_seconds"}

// Row represents a single recorded match
type Row struct {
	Name             string
	Description      string
	Score            float64
	Query            string
	TimeTakenSeconds float64
}

// History appends query results to a CSV file
type History struct {
	path string
	mu   sync.Mutex
}

// New returns a History writing to path. The file is created on first Append.
func New(path string) *History {
	return &History{path: path}
}

// Path returns the results file location
func (h *History) Path() string {
	return h.path
}


// Append writes one row per match. The header is written only when the file
// is new or empty; existing rows are never rewritten.
func (h *History) Append(result *search.QueryResult) error {
	if result == nil || len(result.Matches) == 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat history file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write history header: %w", err)
		}
	}

	elapsed := strconv.FormatFloat(result.ElapsedSeconds(), 'f', 2, 64)
	for _, m := range result.Matches {
		record := []string{
			m.Name,
			m.Description,
			strconv.FormatFloat(m.Score, 'f', -1, 64),
			result.Query,
			elapsed,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return f.Close()
}

// Load reads all recorded rows. A missing file is an empty history.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	rows := []Row{}
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse history file: %w", err)
		}
		if line == 1 {
			continue
		}

		score, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid score: %w", line, err)
		}
		took, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid time: %w", line, err)
		}

		rows = append(rows, Row{
			Name:             record[0],
			Description:      record[1],
			Score:            score,
			Query:            record[3],
			TimeTakenSeconds: took,
		})
	}

	return rows, nil
}
