package model

import "time"

// SearchRecord is one logged search-term event. SearchedAt is the moment the
// user issued the search; RecordedAt is assigned by the database at insert
// and drives the trending recency window.
type SearchRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Term       string    `json:"term"`
	SearchedAt time.Time `json:"searched_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TopTerm is a derived aggregate, computed on demand and never stored.
type TopTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
