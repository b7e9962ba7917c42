package domain

// Well-known document slot names. Each run fully overwrites these;
// readers never see a partial merge.
const (
	DocMacro     = "macro"
	DocNews      = "news"
	DocEarnings  = "custom_calendar"
	DocWatchlist = "watchlist"
)

// Document is a named slot in the persistent store. Payload is
// serialized as-is; LastUpdated is rendered in the display timezone.
type Document struct {
	Name        string `db:"name"`
	Payload     any    `db:"-"`
	LastUpdated string `db:"last_updated"`
}
