// Package report accumulates per-record error counts for the end-of-run
// summary. Fatal errors never land here; they abort the run directly.
package report

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// Summary tallies per-record outcomes by error kind. Safe for concurrent use
// by the enrichment worker pool.
type Summary struct {
	mu        sync.Mutex
	processed int
	counts    map[model.ErrorKind]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[model.ErrorKind]int)}
}

// Record counts one processed record with no error.
func (s *Summary) Record() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
}

// RecordError counts one processed record that failed with the given kind.
func (s *Summary) RecordError(kind model.ErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.counts[kind]++
}

// Processed returns the total number of records seen.
func (s *Summary) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

// Count returns the tally for one error kind.
func (s *Summary) Count(kind model.ErrorKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[kind]
}

// Errors returns the total number of errored records.
func (s *Summary) Errors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// Log emits the summary as one structured log line per error kind plus a
// total, in deterministic kind order.
func (s *Summary) Log(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]string, 0, len(s.counts))
	for k := range s.counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	fields := []zap.Field{
		zap.String("stage", stage),
		zap.Int("processed", s.processed),
	}
	for _, k := range kinds {
		fields = append(fields, zap.Int(k, s.counts[model.ErrorKind(k)]))
	}
	zap.L().Info("run summary", fields...)
}
