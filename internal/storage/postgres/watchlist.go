package postgres

import (
	"context"
	"fmt"

	"marketmind/internal/domain"
)

// watchlistPayload mirrors the watchlist document shape owned by the
// subscription subsystem. The pipeline only ever reads it.
type watchlistPayload struct {
	Tickers []string `json:"tickers"`
}

// Watchlist returns the ticker symbols from the watchlist document.
// A missing document is an empty watchlist, not an error.
func (s *DocumentStore) Watchlist(ctx context.Context) ([]string, error) {
	var payload watchlistPayload
	found, err := s.Get(ctx, domain.DocWatchlist, &payload)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	if !found {
		return nil, nil
	}
	return payload.Tickers, nil
}
