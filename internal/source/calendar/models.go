package calendar

import "encoding/json"

// apiEvent is one event payload from the economic calendar endpoint.
type apiEvent struct {
	Title      string     `json:"title"`
	Country    string     `json:"country"`
	Importance int        `json:"importance"`
	Date       string     `json:"date"`
	Previous   *flexValue `json:"previous"`
	Forecast   *flexValue `json:"forecast"`
	Actual     *flexValue `json:"actual"`
}

// wrappedResponse is the {"result": [...]} shape the endpoint
// sometimes produces instead of a bare array. Result stays raw so a
// present-but-null value can be told apart from an absent key.
type wrappedResponse struct {
	Result json.RawMessage `json:"result"`
}

// flexValue accepts a JSON number or string. The calendar source mixes
// both for indicator values.
type flexValue string

func (v *flexValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = flexValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = flexValue(n.String())
	return nil
}

func (v *flexValue) str() *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
