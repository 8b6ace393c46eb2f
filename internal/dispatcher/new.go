package dispatcher

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
	"github.com/nguyentantai21042004/voicenote-flow/internal/writer"
)

type implDispatcher struct {
	opts      Options
	processor processor.Processor
	writer    writer.Writer
	logger    logger.Logger

	mu sync.Mutex
	// claimed holds every path Run or DispatchOnce has taken on.
	claimed map[string]struct{}
}

// New validates opts and creates a Dispatcher.
func New(opts Options, proc processor.Processor, w writer.Writer, log logger.Logger) (Dispatcher, error) {
	if proc == nil || w == nil {
		return nil, fmt.Errorf("%w: processor and writer are required", ErrInvalidOptions)
	}
	if opts.Filter.Dir == "" {
		return nil, fmt.Errorf("%w: input directory is required", ErrInvalidOptions)
	}
	switch opts.Mode {
	case ModeBatched:
		if opts.BatchSize <= 0 {
			return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidOptions, opts.BatchSize)
		}
	case ModePool:
		if opts.Workers <= 0 {
			return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOptions, opts.Workers)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, opts.Mode)
	}

	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &implDispatcher{
		opts:      opts,
		processor: proc,
		writer:    w,
		logger:    log,
		claimed:   make(map[string]struct{}),
	}, nil
}
