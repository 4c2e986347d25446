package model

import "github.com/goccy/go-json"

// LocationMatch is a single entry returned by the provider's search endpoint.
// Only Name and Country are shown to the user; Name is what gets persisted
// and sent to the forecast endpoint.
type LocationMatch struct {
	ID      int64   `json:"id,omitempty"`
	Name    string  `json:"name"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	URL     string  `json:"url,omitempty"`
}

// Label is the "<name>, <country>" text rendered in the match list.
func (l LocationMatch) Label() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// MarshalJSON adds the rendered label so clients can draw the match list as is.
func (l LocationMatch) MarshalJSON() ([]byte, error) {
	type match LocationMatch
	return json.Marshal(struct {
		match
		Label string `json:"label"`
	}{match(l), l.Label()})
}
