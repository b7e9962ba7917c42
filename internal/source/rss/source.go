package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"marketmind/internal/domain"
	"marketmind/internal/normalize"
)

const (
	SourceID   = "rss"
	SourceName = "Breaking News Feed"
)

// excerptFallback is attached when a feed entry carries no usable body
// at all; the scorer is told to work from title and link alone.
const excerptFallback = "No body text; judge from the title and link."

// Config holds news source configuration.
type Config struct {
	FeedURL  string
	MaxItems int
	// MaxAge drops entries older than this when non-zero. The feed's
	// own ordering is not always reliable, so MaxItems remains the
	// hard backstop either way.
	MaxAge          time.Duration
	ExcerptMaxChars int
	Timeout         time.Duration
}

// Source fetches a bounded, recency-filtered slice of feed entries.
type Source struct {
	httpClient      *http.Client
	parser          *gofeed.Parser
	feedURL         string
	maxItems        int
	maxAge          time.Duration
	excerptMaxChars int
	logger          *slog.Logger
}

// New creates a new RSS news source.
func New(cfg Config, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		parser:          gofeed.NewParser(),
		feedURL:         cfg.FeedURL,
		maxItems:        cfg.MaxItems,
		maxAge:          cfg.MaxAge,
		excerptMaxChars: cfg.ExcerptMaxChars,
		logger:          logger.With("source", SourceID),
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

// FetchNews fetches the feed and returns at most MaxItems entries in
// source order. A fetch or parse failure yields an empty list with the
// error; the run continues without news.
func (s *Source) FetchNews(ctx context.Context) ([]domain.NewsRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	records := s.transform(feed.Items)

	s.logger.Debug("fetched feed",
		"entries", len(feed.Items),
		"kept", len(records),
	)

	return records, nil
}

func (s *Source) transform(items []*gofeed.Item) []domain.NewsRecord {
	cutoff := time.Time{}
	if s.maxAge > 0 {
		cutoff = time.Now().Add(-s.maxAge)
	}

	records := make([]domain.NewsRecord, 0, s.maxItems)

	for _, item := range items {
		if len(records) >= s.maxItems {
			break
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}

		if !cutoff.IsZero() && !published.IsZero() && published.Before(cutoff) {
			continue
		}

		records = append(records, domain.NewsRecord{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: published,
			Excerpt:     s.excerpt(item),
		})
	}

	return records
}

// excerpt extracts a bounded body excerpt with an ordered fallback
// chain: full content, then summary/description, then a fixed
// placeholder.
func (s *Source) excerpt(item *gofeed.Item) string {
	body := normalize.FirstNonEmpty(
		normalize.Excerpt(item.Content, s.excerptMaxChars),
		normalize.Excerpt(item.Description, s.excerptMaxChars),
	)
	if body == "" {
		return excerptFallback
	}
	return body
}
