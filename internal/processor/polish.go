package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

type implPolisher struct {
	cfg    config.OllamaConfig
	http   *caller
	logger logger.Logger
}

// NewPolisher creates a Processor that asks an Ollama generate endpoint for a structured note.
func NewPolisher(cfg *config.Config, log logger.Logger) Processor {
	return &implPolisher{
		cfg:    cfg.Ollama,
		http:   newCaller(cfg.Ollama.Timeout),
		logger: log,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

func (p *implPolisher) Process(ctx context.Context, file source.InputFile) Result {
	text, err := readTranscript(file)
	if err != nil {
		return Failure(err)
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:  p.cfg.Model,
		Prompt: buildPrompt(text),
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return Failure(fmt.Errorf("encode generate request: %w", err))
	}

	p.logger.Debug(ctx, "Sending %s to %s (%d chars)", file.Name(), p.cfg.Model, len(text))

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	body, err := p.http.post(ctx, p.cfg.URL, header, bytes.NewReader(reqBody))
	if err != nil {
		return Failure(err)
	}

	note, err := decodeNote(body)
	if err != nil {
		return Failure(err)
	}
	return Success(note)
}

// readTranscript loads a transcript file; blank files are an ErrEmptyInput failure.
func readTranscript(file source.InputFile) (string, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s has no text", ErrEmptyInput, file.Name())
	}
	return text, nil
}
