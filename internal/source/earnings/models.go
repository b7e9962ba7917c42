package earnings

// apiResponse is the quoteSummary-style payload for a single ticker.
// Only the calendarEvents module is requested.
type apiResponse struct {
	QuoteSummary struct {
		Result []moduleResult `json:"result"`
		Error  *apiError      `json:"error"`
	} `json:"quoteSummary"`
}

type moduleResult struct {
	CalendarEvents struct {
		Earnings struct {
			EarningsDate    []rawValue `json:"earningsDate"`
			EarningsAverage *rawValue  `json:"earningsAverage"`
		} `json:"earnings"`
	} `json:"calendarEvents"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawValue is the {raw, fmt} pair the market-data source wraps every
// numeric field in. Raw carries a UTC epoch for date fields.
type rawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}
