// Package render builds the notification text blocks. Formatting uses
// the channel's basic markdown emphasis only.
package render

import (
	"fmt"
	"strings"
	"time"

	"marketmind/internal/domain"
)

// MacroDigest renders one text block for a day's macro events. The
// caller passes only the events that fall on the target calendar day.
func MacroDigest(events []domain.MacroEvent, day time.Time, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString("📊 *Today's Key Economic Releases* 📊\n")
	fmt.Fprintf(&sb, "Date: %s\n\n", day.In(loc).Format("2006-01-02"))

	for _, ev := range events {
		fmt.Fprintf(&sb, "🔹 *%s*\n", ev.Title)
		fmt.Fprintf(&sb, "⏱ Time: %s\n", clockPart(ev.Display))
		fmt.Fprintf(&sb, "📉 Forecast: %s | Previous: %s | Actual: %s\n", ev.Forecast, ev.Previous, ev.Actual)
		fmt.Fprintf(&sb, "💡 *AI script*: %s\n\n", ev.Analysis)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// NewsAlert renders one text block for a single scored news record.
func NewsAlert(record domain.NewsRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🚨 *Market Intelligence (score: %d/10)* 🚨\n\n", record.Score)
	fmt.Fprintf(&sb, "📰 *%s*\n", record.Title)
	fmt.Fprintf(&sb, "📈 Impact: %s\n", record.Impact)
	fmt.Fprintf(&sb, "💡 *AI note*: %s\n", record.Reason)
	if record.Link != "" {
		fmt.Fprintf(&sb, "🔗 [Read more](%s)\n", record.Link)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// clockPart extracts the clock portion of a display string like
// "2006-01-02 15:04 (SGT)". Unparsable timestamps pass their raw
// source string through display, so only split when the middle field
// really is a clock; otherwise render the whole value.
func clockPart(display string) string {
	fields := strings.Fields(display)
	if len(fields) == 3 {
		if _, err := time.Parse("15:04", fields[1]); err == nil {
			return fields[1]
		}
	}
	return display
}
