package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"marketmind/internal/domain"
	"marketmind/internal/normalize"
)

const (
	SourceID   = "calendar"
	SourceName = "Economic Calendar"
)

const windowLayout = "2006-01-02T15:04:05.000Z"

// Config holds calendar source configuration.
type Config struct {
	BaseURL       string
	Countries     string
	ImportanceMin int
	ExtraDays     int
	Timeout       time.Duration
}

// Source fetches a date-windowed batch of macro events.
type Source struct {
	httpClient    *http.Client
	baseURL       string
	countries     string
	importanceMin int
	extraDays     int
	loc           *time.Location
	logger        *slog.Logger
}

// New creates a new calendar source. Events are rendered for display
// in loc.
func New(cfg Config, loc *time.Location, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:       cfg.BaseURL,
		countries:     cfg.Countries,
		importanceMin: cfg.ImportanceMin,
		extraDays:     cfg.ExtraDays,
		loc:           loc,
		logger:        logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchEvents fetches the current week's events (extended by ExtraDays
// when configured), keeps those at or above the importance threshold,
// and returns them sorted ascending by UTC instant. Any request or
// decode failure yields an empty list together with the error; the
// caller continues the run with no macro data.
func (s *Source) FetchEvents(ctx context.Context) ([]domain.MacroEvent, error) {
	from, to := weekWindow(time.Now().UTC(), s.extraDays)

	events, err := s.doRequest(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}

	s.logger.Debug("fetched calendar batch",
		"from", from.Format(windowLayout),
		"to", to.Format(windowLayout),
		"events", len(events),
	)

	return s.transform(events), nil
}

func (s *Source) doRequest(ctx context.Context, from, to time.Time) ([]apiEvent, error) {
	q := url.Values{}
	q.Set("from", from.Format(windowLayout))
	q.Set("to", to.Format(windowLayout))
	q.Set("countries", s.countries)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Origin", "https://www.tradingview.com")
	req.Header.Set("Referer", "https://www.tradingview.com/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return decodeEvents(body)
}

// decodeEvents accepts either {"result": [...]} or a bare array. A
// wrapper whose result is null is an empty batch, not an error.
func decodeEvents(body []byte) ([]apiEvent, error) {
	var wrapped wrappedResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Result != nil {
		if string(wrapped.Result) == "null" {
			return nil, nil
		}
		var events []apiEvent
		if err := json.Unmarshal(wrapped.Result, &events); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return events, nil
	}

	var events []apiEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return events, nil
}

func (s *Source) transform(events []apiEvent) []domain.MacroEvent {
	out := make([]domain.MacroEvent, 0, len(events))

	for _, ev := range events {
		if ev.Importance < s.importanceMin {
			continue
		}
		if ev.Date == "" {
			continue
		}

		instant, display := normalize.Timestamp(ev.Date, s.loc)
		if instant.IsZero() {
			s.logger.Warn("failed to parse event date",
				"title", ev.Title,
				"date", ev.Date,
			)
		}

		out = append(out, domain.MacroEvent{
			Title:      ev.Title,
			Time:       instant,
			Timestamp:  normalize.UnixOrZero(instant),
			Display:    display,
			Previous:   normalize.StringOr(ev.Previous.str(), domain.ValueMissing),
			Forecast:   normalize.StringOr(ev.Forecast.str(), domain.ValueMissing),
			Actual:     normalize.StringOr(ev.Actual.str(), domain.ValueUnreleased),
			Importance: ev.Importance,
			Analysis:   domain.AnalysisPending,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	return out
}

// weekWindow returns the Monday 00:00 UTC of now's week and the end of
// that week's Sunday, extended by extraDays.
func weekWindow(now time.Time, extraDays int) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	// time.Weekday counts Sunday as 0; the window starts on Monday.
	offset := (weekday + 6) % 7

	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	end := monday.AddDate(0, 0, 6+extraDays).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	return monday, end
}
