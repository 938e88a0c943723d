// Package replay guards mutating entry points against re-submitted host
// transactions. The host chain assigns each transaction a unique id; applying
// the same id twice would double-spend, so the first submission wins and any
// repeat is rejected before domain logic runs.
package replay

import "context"

// Guard records first-seen transaction ids.
type Guard interface {
	// FirstSeen marks txID as processed. It returns true exactly once per id
	// within the retention window; false means the id was already applied.
	FirstSeen(ctx context.Context, txID string) (bool, error)
}
