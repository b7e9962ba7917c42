package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmind/internal/domain"
)

func TestMacroDigest(t *testing.T) {
	sgt, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)

	day := time.Date(2025, 3, 14, 8, 0, 0, 0, sgt)

	events := []domain.MacroEvent{
		{
			Title:    "CPI YoY",
			Display:  "2025-03-14 20:30 (+08)",
			Forecast: "3.2%",
			Previous: "3.4%",
			Actual:   domain.ValueMissing,
			Analysis: "Cooler print would lift rate-cut odds.",
		},
		{
			Title:    "Retail Sales MoM",
			Display:  "whenever released",
			Forecast: domain.ValueMissing,
			Previous: "0.4%",
			Actual:   domain.ValueMissing,
			Analysis: domain.AnalysisPending,
		},
		{
			Title:    "Fed Speech",
			Display:  "sometime next week",
			Forecast: domain.ValueMissing,
			Previous: domain.ValueMissing,
			Actual:   domain.ValueMissing,
			Analysis: domain.AnalysisPending,
		},
	}

	got := MacroDigest(events, day, sgt)

	assert.Contains(t, got, "*Today's Key Economic Releases*")
	assert.Contains(t, got, "Date: 2025-03-14")
	assert.Contains(t, got, "🔹 *CPI YoY*")
	assert.Contains(t, got, "⏱ Time: 20:30")
	assert.Contains(t, got, "📉 Forecast: 3.2% | Previous: 3.4% | Actual: N/A")
	assert.Contains(t, got, "💡 *AI script*: Cooler print would lift rate-cut odds.")

	// An unparsable source timestamp passes through whole, even when it
	// has as many words as a rendered one.
	assert.Contains(t, got, "⏱ Time: whenever released")
	assert.Contains(t, got, "⏱ Time: sometime next week")
	assert.Contains(t, got, "💡 *AI script*: pending")

	assert.NotRegexp(t, `\n$`, got)
}

func TestNewsAlert(t *testing.T) {
	record := domain.NewsRecord{
		Title:  "Fed signals pause",
		Link:   "https://example.com/a",
		Score:  9,
		Impact: "positive",
		Reason: "Policy pivot lifts risk assets",
	}

	got := NewsAlert(record)

	assert.Contains(t, got, "*Market Intelligence (score: 9/10)*")
	assert.Contains(t, got, "📰 *Fed signals pause*")
	assert.Contains(t, got, "📈 Impact: positive")
	assert.Contains(t, got, "💡 *AI note*: Policy pivot lifts risk assets")
	assert.Contains(t, got, "🔗 [Read more](https://example.com/a)")
}

func TestNewsAlertWithoutLink(t *testing.T) {
	record := domain.NewsRecord{
		Title:  "Wire flash",
		Score:  8,
		Impact: "negative",
		Reason: "r",
	}

	got := NewsAlert(record)

	assert.NotContains(t, got, "Read more")
	assert.NotRegexp(t, `\n$`, got)
}

func TestClockPart(t *testing.T) {
	assert.Equal(t, "20:30", clockPart("2025-03-14 20:30 (+08)"))
	assert.Equal(t, "tomorrow", clockPart("tomorrow"))
	assert.Equal(t, "", clockPart(""))

	// Raw source strings that happen to contain spaces must never be
	// split like a rendered timestamp.
	assert.Equal(t, "whenever released", clockPart("whenever released"))
	assert.Equal(t, "sometime next week", clockPart("sometime next week"))
	assert.Equal(t, "to be confirmed (TBC)", clockPart("to be confirmed (TBC)"))
}
