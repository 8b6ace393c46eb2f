package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/dispatcher"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
	"github.com/nguyentantai21042004/voicenote-flow/internal/report"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
	"github.com/nguyentantai21042004/voicenote-flow/internal/watcher"
	"github.com/nguyentantai21042004/voicenote-flow/internal/writer"
	"golang.org/x/time/rate"
)

const usage = `usage: voicenote <transcribe|polish> [flags]

  transcribe  audio files -> raw transcripts (Deepgram), batched by group key
  polish      transcripts -> structured notes (Ollama or Gemini), worker pool

Run "voicenote <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 when the run completed, even with
// per-file failures, 1 on a fatal error and 2 on bad usage. Cancelling ctx
// stops the run like a signal does.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	stage := config.Stage(args[0])
	if stage != config.StageTranscribe && stage != config.StagePolish {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	fs := flag.NewFlagSet(string(stage), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fl := registerFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadOrDefault(fl.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	fl.apply(fs, cfg, stage)
	if err := cfg.Validate(stage); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	runID := uuid.NewString()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format).With("run_id", runID, "stage", string(stage))
	defer log.Sync()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Warn(ctx, "Shutdown signal received, finishing in-flight files")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	p, err := newPipeline(ctx, cfg, stage, log)
	if err != nil {
		log.Error(ctx, "Failed to initialise %s: %v", stage, err)
		return 1
	}
	p.opts.RunID = runID

	d, err := dispatcher.New(p.opts, p.proc, p.writer, log)
	if err != nil {
		log.Error(ctx, "Failed to create dispatcher: %v", err)
		return 1
	}

	// The watch is registered before the first pass lists the directory, so
	// files created while it runs queue up as events instead of being missed.
	var w watcher.Watcher
	if cfg.Watch {
		w, err = watcher.New(p.opts.Filter, func(ctx context.Context, file source.InputFile) {
			if _, ok := d.DispatchOnce(ctx, file); !ok {
				log.Debug(ctx, "Already processed %s", file.Name())
			}
		}, log, p.concurrency)
		if err != nil {
			log.Error(ctx, "Failed to create watcher: %v", err)
			return 1
		}
		defer w.Stop()
	}

	summary, err := d.Run(ctx)
	if err != nil {
		log.Error(ctx, "Run failed: %v", err)
		return 1
	}
	fmt.Fprintln(stdout, report.Render(string(stage), summary))

	if w == nil || ctx.Err() != nil {
		return 0
	}

	log.Info(ctx, "Watching %s for new files. Press Ctrl+C to stop", p.opts.Filter.Dir)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, "Watcher error: %v", err)
		return 1
	}
	log.Info(ctx, "Stopped")
	return 0
}

// pipeline is the stage-specific wiring handed to the dispatcher.
type pipeline struct {
	opts        dispatcher.Options
	proc        processor.Processor
	writer      writer.Writer
	concurrency int
}

func newPipeline(ctx context.Context, cfg *config.Config, stage config.Stage, log logger.Logger) (*pipeline, error) {
	p := &pipeline{}

	switch stage {
	case config.StageTranscribe:
		t := cfg.Transcribe
		p.opts = dispatcher.Options{
			Filter:    source.Filter{Dir: t.Input, Extensions: t.Extensions, Prefix: t.Prefix},
			Mode:      dispatcher.ModeBatched,
			BatchSize: t.BatchSize,
		}
		p.proc = processor.NewTranscriber(cfg, log)
		p.writer = writer.NewTranscript(t.Output)
		p.concurrency = t.BatchSize

		log.Info(ctx, "Transcribing %s -> %s (batch size %d, model %s)", t.Input, t.Output, t.BatchSize, cfg.Deepgram.Model)

	case config.StagePolish:
		pc := cfg.Polish
		p.opts = dispatcher.Options{
			Filter:  source.Filter{Dir: pc.Input, Extensions: pc.Extensions, Prefix: pc.Prefix},
			Mode:    dispatcher.ModePool,
			Workers: pc.Workers,
		}
		p.writer = writer.NewNote(pc.Output, pc.Format)
		p.concurrency = pc.Workers

		switch pc.Provider {
		case config.ProviderGemini:
			proc, err := processor.NewGemini(ctx, cfg, log)
			if err != nil {
				return nil, err
			}
			p.proc = proc
		default:
			p.proc = processor.NewPolisher(cfg, log)
		}

		log.Info(ctx, "Polishing %s -> %s (%d workers, provider %s, format %s)", pc.Input, pc.Output, pc.Workers, pc.Provider, pc.Format)

	default:
		return nil, fmt.Errorf("%w: unknown stage %q", config.ErrConfiguration, stage)
	}

	if rpm := cfg.Performance.RequestsPerMinute; rpm > 0 {
		p.opts.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		log.Info(ctx, "Pacing remote calls at %d per minute", rpm)
	}
	return p, nil
}
