package watcher

import (
	"context"

	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

// Watcher picks up files that appear in an input directory after startup.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once per new file that matches the filter.
type EventHandler func(ctx context.Context, file source.InputFile)
