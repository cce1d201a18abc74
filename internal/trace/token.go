package trace

import "github.com/google/uuid"

// TokenSource produces run identifiers.
type TokenSource interface {
	NewRunID() string
}

// UUIDv7Source issues time-sortable UUIDv7 run IDs, so a run listing
// ordered by ID is also ordered by creation time.
type UUIDv7Source struct{}

// NewRunID returns a fresh UUIDv7 string.
func (UUIDv7Source) NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSource always returns the same run ID. The harness uses it so
// trace snapshots are byte-identical across runs.
type FixedSource struct {
	ID string
}

// NewRunID returns the fixed ID, or a stable default when unset.
func (s FixedSource) NewRunID() string {
	if s.ID == "" {
		return "run-default"
	}
	return s.ID
}
