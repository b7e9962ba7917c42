package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketmind/internal/domain"
)

// newsVerdict is one entry of the scorer's JSON-array contract.
type newsVerdict struct {
	ID     int    `json:"id"`
	Score  int    `json:"score"`
	Impact string `json:"impact"`
	Reason string `json:"reason"`
}

const newsPromptHeader = `You are a top Wall Street macro trader and equity analyst. Assess the potential impact of the following breaking financial news on the US equity market, gold, or major index-weight stocks and hot sectors. Judge from the title, body text and link together.

Scoring rules (0-10):
- 0-3: ordinary noise (small-cap earnings, routine executive remarks, news with no real impact).
- 4-6: moderately important (routine economic data, day-to-day news on non-core names).
- 7-8: highly important (major downgrades or earnings blowups at index-weight names, major sector-wide developments, macro events able to move market sentiment).
- 9-10: extremely important (sudden war, Fed policy surprises, systemic black-swan events).

Note: even a single stock deserves 7 or above when it is a market-moving company (mega-cap tech, well-known blue chips).

Respond with a raw JSON array only, no markdown fences:
[
  {"id": <index>, "score": <0-10>, "impact": "bullish/bearish/neutral (state the affected target: market, gold, sector or stock)", "reason": "one short sentence"}
]

News to assess:
`

// ScoreNews batches all records into one model request, parses the
// JSON-array contract and returns only the records at or above the
// relevance threshold, in the order the model returned them. Title and
// link are reattached from the source records; the model's echo of
// them is not trusted. A total parse failure returns an empty list.
func (a *Analyst) ScoreNews(ctx context.Context, records []domain.NewsRecord) ([]domain.NewsRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	raw, err := a.generate(ctx, buildNewsPrompt(records))
	if err != nil {
		return nil, fmt.Errorf("score news: %w", err)
	}

	scored, dropped, err := mergeNewsVerdicts(records, raw, a.scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("score news: %w", err)
	}
	if dropped > 0 {
		a.logger.Warn("dropped malformed scorer entries", "count", dropped)
	}

	a.logger.Info("scored news batch",
		"sent", len(records),
		"retained", len(scored),
	)

	return scored, nil
}

func buildNewsPrompt(records []domain.NewsRecord) string {
	var sb strings.Builder
	sb.WriteString(newsPromptHeader)

	for i, r := range records {
		fmt.Fprintf(&sb, "[%d] Title: %s\nPublished: %s\nLink: %s\nBody/summary: %s\n\n",
			i, r.Title, r.PublishedAt.Format("2006-01-02 15:04"), r.Link, r.Excerpt)
	}

	return sb.String()
}

// mergeNewsVerdicts correlates the model's entries back to the source
// records by positional index. An entry whose id is outside
// [0, len(records)) is dropped alone; an unparsable top-level payload
// drops the whole batch.
func mergeNewsVerdicts(records []domain.NewsRecord, raw string, threshold int) ([]domain.NewsRecord, int, error) {
	var verdicts []newsVerdict
	if err := json.Unmarshal([]byte(raw), &verdicts); err != nil {
		return nil, 0, fmt.Errorf("parse scorer response: %w", err)
	}

	scored := make([]domain.NewsRecord, 0, len(verdicts))
	dropped := 0

	for _, v := range verdicts {
		if v.ID < 0 || v.ID >= len(records) {
			dropped++
			continue
		}

		score := clampScore(v.Score)
		if score < threshold {
			continue
		}

		record := records[v.ID]
		record.Score = score
		record.Impact = v.Impact
		record.Reason = v.Reason
		scored = append(scored, record)
	}

	return scored, dropped, nil
}
