// Package dispatcher runs one Processor call per input file with bounded
// concurrency and collects every outcome into a run summary.
//
// Two regimes are supported. ModeBatched groups files by source.Key, walks the
// groups in ascending key order and runs each fixed-size batch fully in
// parallel behind a barrier: batch N+1 starts only after every item of batch N
// finished. ModePool drains all files through a fixed number of workers with
// no barrier. In both regimes an item's failure never cancels its siblings.
package dispatcher

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidOptions is a configuration error detected before any work starts.
	ErrInvalidOptions = errors.New("invalid dispatcher options")
	// ErrSkipped marks items that never started because the run was cancelled.
	ErrSkipped = errors.New("skipped")
	// ErrPanic marks items whose processing panicked.
	ErrPanic = errors.New("panic while processing")
)

type Mode string

const (
	ModeBatched Mode = "batched"
	ModePool    Mode = "pool"
)

type Options struct {
	Filter    source.Filter
	Mode      Mode
	BatchSize int
	Workers   int
	// Limiter paces remote calls across all items when non-nil.
	Limiter *rate.Limiter
	RunID   string
}

// Dispatcher turns the files selected by Options.Filter into one Outcome each.
type Dispatcher interface {
	// Run enumerates, dispatches and summarises. The error is non-nil only for
	// structural failures such as a missing input directory.
	Run(ctx context.Context) (Summary, error)
	// Dispatch processes and writes a single file.
	Dispatch(ctx context.Context, file source.InputFile) Outcome
	// DispatchOnce is Dispatch for files that Run may also pick up. Each path
	// is handled at most once per Dispatcher; ok is false when it was already taken.
	DispatchOnce(ctx context.Context, file source.InputFile) (out Outcome, ok bool)
}

// Outcome is the terminal state of one file. Output is set only on success.
type Outcome struct {
	File     source.InputFile
	Output   string
	Err      error
	Duration time.Duration
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

func (o Outcome) Skipped() bool {
	return errors.Is(o.Err, ErrSkipped)
}

type Summary struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	Interrupted bool
	Duration    time.Duration
	Outcomes    []Outcome
}

// Failures returns the failed outcomes, skipped ones excluded.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if !o.OK() && !o.Skipped() {
			out = append(out, o)
		}
	}
	return out
}

func newSummary(runID string, total int, outcomes []Outcome) Summary {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].File.Path < outcomes[j].File.Path
	})

	s := Summary{RunID: runID, Total: total, Outcomes: outcomes}
	for _, o := range outcomes {
		switch {
		case o.OK():
			s.Succeeded++
		case !o.Skipped():
			s.Failed++
		}
	}
	s.Skipped = total - s.Succeeded - s.Failed
	return s
}
