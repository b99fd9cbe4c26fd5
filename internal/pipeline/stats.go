package pipeline

import "sync"

// RunStats tracks aggregate counters and byte totals across a batch run.
// Jobs update it concurrently through add.
type RunStats struct {
	mu sync.Mutex

	Total    int // Files discovered.
	Split    int // Jobs that left usable parts (incl. partial/single).
	Skipped  int // Files already within the limit.
	Unsplit  int // Jobs that errored; the original should be used as-is.
	Aborted  int
	Failed   int // Could not start (disk space, stat, mkdir).
	Parts    int
	Warnings int

	TotalInputBytes int64 // Bytes of files handed to the splitter.
}

func (s *RunStats) add(fn func(*RunStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Snapshot returns a copy safe to read while jobs are still running.
func (s *RunStats) Snapshot() RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RunStats{
		Total:           s.Total,
		Split:           s.Split,
		Skipped:         s.Skipped,
		Unsplit:         s.Unsplit,
		Aborted:         s.Aborted,
		Failed:          s.Failed,
		Parts:           s.Parts,
		Warnings:        s.Warnings,
		TotalInputBytes: s.TotalInputBytes,
	}
}

// Processed returns the number of files that reached a terminal state.
func (s *RunStats) Processed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Split + s.Skipped + s.Unsplit + s.Aborted + s.Failed
}

// OK reports whether the run finished without aborted or failed jobs.
func (s *RunStats) OK() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Aborted == 0 && s.Failed == 0
}
