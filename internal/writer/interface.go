package writer

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

// ErrWrite wraps every failure to create the output directory or write an artifact.
var ErrWrite = errors.New("write error")

// Writer persists one successful payload and returns the artifact path.
type Writer interface {
	Write(ctx context.Context, file source.InputFile, payload processor.Payload) (string, error)
}
