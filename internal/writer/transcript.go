package writer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

type implTranscriptWriter struct {
	dir string
}

// NewTranscript creates a Writer that stores raw transcripts as <dir>/<stem>.md.
func NewTranscript(dir string) Writer {
	return &implTranscriptWriter{dir: dir}
}

// TranscriptPath returns the artifact path for a transcribed input.
func TranscriptPath(dir string, file source.InputFile) string {
	return filepath.Join(dir, file.Stem+".md")
}

func (w *implTranscriptWriter) Write(ctx context.Context, file source.InputFile, payload processor.Payload) (string, error) {
	text, ok := payload.(processor.Transcript)
	if !ok {
		return "", fmt.Errorf("%w: transcript writer got %T", ErrWrite, payload)
	}

	path := TranscriptPath(w.dir, file)
	if err := writeText(path, string(text)); err != nil {
		return "", err
	}
	return path, nil
}
