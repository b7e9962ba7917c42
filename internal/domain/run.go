package domain

import "time"

// RunStats holds statistics about a single pipeline run.
type RunStats struct {
	MacroFetched    int
	MacroAnalyzed   int
	NewsFetched     int
	NewsScored      int
	TickersResolved int
	TickersSkipped  int
	Persisted       bool
	Notified        int
	Published       int
	Errors          int
	Duration        time.Duration
}
