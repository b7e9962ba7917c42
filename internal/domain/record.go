package domain

import "time"

// Placeholder values used when a source omits a field. Downstream
// consumers (prompt building, notification rendering) assume every
// field is present, so absence is always substituted, never omitted.
const (
	ValueMissing    = "N/A"
	ValueUnreleased = "not yet released"
	AnalysisPending = "pending"
)

// MacroEvent is a canonical macro-economic calendar event.
//
// Time is the UTC instant of the release. A zero Time means the source
// timestamp could not be parsed; Display then carries the raw source
// string instead of a rendered local time.
type MacroEvent struct {
	Title      string    `json:"title"`
	Time       time.Time `json:"-"`
	Timestamp  int64     `json:"timestamp"`
	Display    string    `json:"date"`
	Previous   string    `json:"previous"`
	Forecast   string    `json:"forecast"`
	Actual     string    `json:"actual"`
	Importance int       `json:"importance"`
	Analysis   string    `json:"analysis"`
}

// NewsRecord is a canonical news item. Score, Impact and Reason are
// empty until the relevance scorer has run.
type NewsRecord struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Excerpt     string    `json:"-"`
	Score       int       `json:"score"`
	Impact      string    `json:"impact"`
	Reason      string    `json:"reason"`
}

// EarningsRecord is an upcoming earnings date resolved from a
// watchlist ticker. A ticker with no resolvable date produces no
// record at all.
type EarningsRecord struct {
	Ticker       string    `json:"ticker"`
	Title        string    `json:"title"`
	Time         time.Time `json:"-"`
	Timestamp    int64     `json:"timestamp"`
	Display      string    `json:"date"`
	ForecastNote string    `json:"forecast_note"`
	Type         string    `json:"type"`
}
