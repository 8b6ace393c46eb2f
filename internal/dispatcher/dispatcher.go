package dispatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
	"golang.org/x/sync/errgroup"
)

// collector is the only state shared between concurrent items.
type collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (c *collector) add(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *collector) snapshot() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

func (d *implDispatcher) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	files, err := source.Enumerate(d.opts.Filter)
	if err != nil {
		return Summary{RunID: d.opts.RunID}, fmt.Errorf("enumerate input: %w", err)
	}

	files = d.claimAll(files)
	if len(files) == 0 {
		d.logger.Info(ctx, "No files found in %s (extensions %v, prefix %q), nothing to do",
			d.opts.Filter.Dir, d.opts.Filter.Extensions, d.opts.Filter.Prefix)
		return Summary{RunID: d.opts.RunID, Duration: time.Since(start)}, nil
	}

	d.logger.Info(ctx, "Found %d files to process", len(files))

	c := &collector{}
	var interrupted bool
	switch d.opts.Mode {
	case ModeBatched:
		interrupted = d.runBatched(ctx, files, c)
	case ModePool:
		interrupted = d.runPool(ctx, files, c)
	}

	summary := newSummary(d.opts.RunID, len(files), c.snapshot())
	summary.Interrupted = interrupted
	summary.Duration = time.Since(start)

	d.logger.Info(ctx, "Run complete: %d succeeded, %d failed, %d skipped in %s",
		summary.Succeeded, summary.Failed, summary.Skipped, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// runBatched walks groups in key order and each group in batches, waiting for
// a whole batch before starting the next. It reports whether ctx stopped the run early.
func (d *implDispatcher) runBatched(ctx context.Context, files []source.InputFile, c *collector) bool {
	groups := source.Group(files)

	for _, key := range groups.Keys() {
		group := groups[key]
		batches, err := source.Chunk(group, d.opts.BatchSize)
		if err != nil {
			// New rejects non-positive sizes, so this is unreachable.
			panic(err)
		}

		d.logger.Info(ctx, "Processing group %s with %d files", key, len(group))

		for i, batch := range batches {
			if ctx.Err() != nil {
				d.logger.Warn(ctx, "Interrupted before batch %d/%d of group %s", i+1, len(batches), key)
				return true
			}

			d.logger.Info(ctx, "Processing batch %d/%d of group %s (%d files)", i+1, len(batches), key, len(batch))

			var g errgroup.Group
			for _, file := range batch {
				g.Go(func() error {
					c.add(d.Dispatch(ctx, file))
					return nil
				})
			}
			_ = g.Wait()
		}
	}
	return false
}

// runPool admits at most Workers items at a time across the whole input set.
func (d *implDispatcher) runPool(ctx context.Context, files []source.InputFile, c *collector) bool {
	d.logger.Info(ctx, "Processing %d files with %d workers", len(files), d.opts.Workers)

	var g errgroup.Group
	g.SetLimit(d.opts.Workers)

	interrupted := false
	for _, file := range files {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		g.Go(func() error {
			c.add(d.Dispatch(ctx, file))
			return nil
		})
	}
	_ = g.Wait()

	if interrupted {
		d.logger.Warn(ctx, "Interrupted, remaining files were not started")
	}
	return interrupted
}

// claim reports whether path was not taken yet, and takes it.
func (d *implDispatcher) claim(path string) bool {
	path = filepath.Clean(path)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.claimed[path]; ok {
		return false
	}
	d.claimed[path] = struct{}{}
	return true
}

// claimAll keeps the files that were not taken yet, preserving order.
func (d *implDispatcher) claimAll(files []source.InputFile) []source.InputFile {
	out := files[:0]
	for _, f := range files {
		if d.claim(f.Path) {
			out = append(out, f)
		}
	}
	return out
}

func (d *implDispatcher) DispatchOnce(ctx context.Context, file source.InputFile) (Outcome, bool) {
	if !d.claim(file.Path) {
		return Outcome{File: file}, false
	}
	return d.Dispatch(ctx, file), true
}

// Dispatch runs Process then Write for one file. Every failure, including a
// panic, ends up in the returned Outcome.
func (d *implDispatcher) Dispatch(ctx context.Context, file source.InputFile) (out Outcome) {
	start := time.Now()
	out.File = file

	defer func() {
		if r := recover(); r != nil {
			out.Output = ""
			out.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		out.Duration = time.Since(start)
		d.logOutcome(ctx, out)
	}()

	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("%w: %w", ErrSkipped, err)
		return out
	}
	if d.opts.Limiter != nil {
		if err := d.opts.Limiter.Wait(ctx); err != nil {
			out.Err = fmt.Errorf("%w: %w", ErrSkipped, err)
			return out
		}
	}

	d.logger.Info(ctx, "Processing: %s", file.Name())

	res := d.processor.Process(ctx, file)
	if !res.OK() {
		out.Err = res.Err
		return out
	}

	path, err := d.writer.Write(ctx, file, res.Payload)
	if err != nil {
		out.Err = err
		return out
	}

	out.Output = path
	return out
}

func (d *implDispatcher) logOutcome(ctx context.Context, o Outcome) {
	switch {
	case o.OK():
		d.logger.Info(ctx, "[DONE] %s -> %s (%s)", o.File.Name(), filepath.Base(o.Output), o.Duration.Round(time.Millisecond))
	case o.Skipped():
		d.logger.Debug(ctx, "Skipped %s: %v", o.File.Name(), o.Err)
	default:
		d.logger.Error(ctx, "Failed to process %s: %v", o.File.Name(), o.Err)
	}
}
