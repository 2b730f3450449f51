package models

// Source is a citation backing a grounded deep-dive answer.
type Source struct {
	Title string
	URI   string
}

// DeepDive is the search-grounded treatment detail for a single recommendation.
// It is transient: never persisted, superseded by the next lookup, and discarded
// when the session resets.
type DeepDive struct {
	Text    string
	Sources []Source
}
