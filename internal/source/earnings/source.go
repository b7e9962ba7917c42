package earnings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketmind/internal/domain"
	"marketmind/internal/normalize"
)

const (
	SourceID   = "earnings"
	SourceName = "Earnings Calendar"
)

// Config holds earnings source configuration.
type Config struct {
	BaseURL string
	// RequestDelay is the pause between per-ticker lookups. The
	// upstream rate-limits aggressively; this is politeness, not
	// correctness.
	RequestDelay time.Duration
	Timeout      time.Duration
}

// Source resolves watchlist tickers to upcoming earnings records.
type Source struct {
	httpClient   *http.Client
	baseURL      string
	requestDelay time.Duration
	loc          *time.Location
	logger       *slog.Logger
}

// New creates a new earnings source.
func New(cfg Config, loc *time.Location, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:      cfg.BaseURL,
		requestDelay: cfg.RequestDelay,
		loc:          loc,
		logger:       logger.With("source", SourceID),
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

// Resolve looks up the next scheduled earnings instant for each ticker
// in turn. A ticker that fails or has no resolvable date emits nothing
// and never aborts the remaining tickers. The full set is recomputed
// every run.
func (s *Source) Resolve(ctx context.Context, tickers []string) []domain.EarningsRecord {
	records := make([]domain.EarningsRecord, 0, len(tickers))

	for i, ticker := range tickers {
		if i > 0 {
			select {
			case <-ctx.Done():
				return records
			case <-time.After(s.requestDelay):
			}
		}

		record, ok, err := s.lookup(ctx, ticker)
		if err != nil {
			s.logger.Warn("earnings lookup failed", "ticker", ticker, "error", err)
			continue
		}
		if !ok {
			s.logger.Debug("no upcoming earnings date", "ticker", ticker)
			continue
		}

		records = append(records, record)
	}

	return records
}

func (s *Source) lookup(ctx context.Context, ticker string) (domain.EarningsRecord, bool, error) {
	url := fmt.Sprintf("%s/%s?modules=calendarEvents", s.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.EarningsRecord{}, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.EarningsRecord{}, false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.EarningsRecord{}, false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return domain.EarningsRecord{}, false, fmt.Errorf("decode response: %w", err)
	}

	if apiResp.QuoteSummary.Error != nil {
		return domain.EarningsRecord{}, false, fmt.Errorf("source error: %s", apiResp.QuoteSummary.Error.Description)
	}

	return s.transform(ticker, apiResp.QuoteSummary.Result)
}

// transform builds an EarningsRecord from the first usable earnings
// date, or reports ok=false when the ticker has none scheduled.
// Absence of a date is represented by no record at all, never by a
// record with a sentinel date.
func (s *Source) transform(ticker string, results []moduleResult) (domain.EarningsRecord, bool, error) {
	if len(results) == 0 {
		return domain.EarningsRecord{}, false, nil
	}

	earnings := results[0].CalendarEvents.Earnings
	if len(earnings.EarningsDate) == 0 || earnings.EarningsDate[0].Raw == 0 {
		return domain.EarningsRecord{}, false, nil
	}

	instant := time.Unix(int64(earnings.EarningsDate[0].Raw), 0).UTC()

	note := domain.ValueMissing
	if avg := earnings.EarningsAverage; avg != nil && avg.Fmt != "" {
		note = "EPS forecast " + avg.Fmt
	}

	return domain.EarningsRecord{
		Ticker:       ticker,
		Title:        ticker + " earnings",
		Time:         instant,
		Timestamp:    instant.Unix(),
		Display:      normalize.Display(instant, s.loc),
		ForecastNote: note,
		Type:         "custom",
	}, true, nil
}
