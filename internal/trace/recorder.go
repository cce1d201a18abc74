package trace

import (
	"context"
	"log/slog"
)

// Recorder streams a run's lifecycle events into a Store. It
// implements driver.Observer.
//
// Write failures are logged, not returned: the driver loop is
// deliberately infallible after construction, and a broken trace
// database must not change a smoke run's outcome.
type Recorder struct {
	store  *Store
	clock  *Clock
	runID  string
	logger *slog.Logger
}

// NewRecorder registers a run header and returns a recorder for it.
func NewRecorder(ctx context.Context, store *Store, tokens TokenSource, r Run) (*Recorder, error) {
	if r.ID == "" {
		r.ID = tokens.NewRunID()
	}
	if err := store.BeginRun(ctx, r); err != nil {
		return nil, err
	}
	return &Recorder{
		store:  store,
		clock:  NewClock(),
		runID:  r.ID,
		logger: slog.Default(),
	}, nil
}

// RunID returns the identifier events are recorded under.
func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) write(kind string, cycle, value int) {
	e := Event{Seq: r.clock.Next(), Kind: kind, Cycle: cycle, Value: value}
	if err := r.store.WriteEvent(context.Background(), r.runID, e); err != nil {
		r.logger.Error("failed to record trace event",
			"run_id", r.runID,
			"kind", kind,
			"error", err,
		)
	}
}

// ModelConstructed implements driver.Observer.
func (r *Recorder) ModelConstructed() { r.write(KindConstruct, -1, 0) }

// ResetDriven implements driver.Observer.
func (r *Recorder) ResetDriven(v uint8) { r.write(KindReset, -1, int(v)) }

// Evaluated implements driver.Observer.
func (r *Recorder) Evaluated(cycle int) { r.write(KindEval, cycle, 0) }

// Finalized implements driver.Observer.
func (r *Recorder) Finalized() { r.write(KindFinal, -1, 0) }
