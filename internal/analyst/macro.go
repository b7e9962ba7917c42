package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"marketmind/internal/domain"
)

// macroVerdict is one entry of the analyzer's JSON-array contract.
type macroVerdict struct {
	ID       int    `json:"id"`
	Analysis string `json:"analysis"`
}

const macroPromptFormat = `You are a top Wall Street macro analyst. The economic releases below are listed with their prior value, consensus forecast and actual value. In plain language, analyze each release's potential impact on the US equity market and gold.

Requirements:
1. When the actual value reads "%s", give a trading script ("if the print comes in above consensus, bearish for equities / bullish for gold", and so on).
2. When the actual value is present, judge it as a beat or a miss and state the impact already in motion.
3. Keep each analysis under %d characters.

Respond with a raw JSON array only, no markdown fences:
[
  {"id": <index>, "analysis": "impact analysis or trading script"}
]

Releases:
`

// AnalyzeMacro batches all events into one model request and merges
// the per-index analysis text back into the events. Events the model
// does not answer for keep their pending placeholder; a total parse
// failure leaves every event unmodified. Merging is an overwrite, so
// replaying the same response is idempotent.
func (a *Analyst) AnalyzeMacro(ctx context.Context, events []domain.MacroEvent) ([]domain.MacroEvent, error) {
	if len(events) == 0 {
		return events, nil
	}

	raw, err := a.generate(ctx, buildMacroPrompt(events, a.analysisMaxChars))
	if err != nil {
		return events, fmt.Errorf("analyze macro: %w", err)
	}

	merged, applied, err := mergeMacroVerdicts(events, raw)
	if err != nil {
		return events, fmt.Errorf("analyze macro: %w", err)
	}

	a.logger.Info("analyzed macro batch",
		"sent", len(events),
		"applied", applied,
	)

	return merged, nil
}

func buildMacroPrompt(events []domain.MacroEvent, maxChars int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, macroPromptFormat, domain.ValueUnreleased, maxChars)

	for i, ev := range events {
		fmt.Fprintf(&sb, "[%d] %s | %s\n    previous: %s, forecast: %s, actual: %s\n",
			i, ev.Display, ev.Title, ev.Previous, ev.Forecast, ev.Actual)
	}

	return sb.String()
}

// mergeMacroVerdicts overwrites Analysis for every verdict with an
// in-range id and reports how many applied. Out-of-range ids are
// skipped one by one.
func mergeMacroVerdicts(events []domain.MacroEvent, raw string) ([]domain.MacroEvent, int, error) {
	var verdicts []macroVerdict
	if err := json.Unmarshal([]byte(raw), &verdicts); err != nil {
		return events, 0, fmt.Errorf("parse analyzer response: %w", err)
	}

	merged := make([]domain.MacroEvent, len(events))
	copy(merged, events)

	applied := 0
	for _, v := range verdicts {
		if v.ID < 0 || v.ID >= len(merged) {
			continue
		}
		if v.Analysis == "" {
			continue
		}
		merged[v.ID].Analysis = v.Analysis
		applied++
	}

	return merged, applied, nil
}
