package models

import "time"

// HistoryEntry is one completed diagnosis kept for later review. Entries are
// immutable after creation; the collection is only ever prepended to, truncated
// from the tail, or cleared as a whole.
type HistoryEntry struct {
	ID        string
	Timestamp time.Time
	// Image is the opaque encoded payload that was analyzed, stored verbatim so
	// that selecting the entry can reproduce the original scan exactly.
	Image  string
	Result Diagnosis
}
