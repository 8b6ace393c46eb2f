package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
	"google.golang.org/genai"
)

type implGemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  logger.Logger
}

// NewGemini creates a polishing Processor backed by the Gemini API.
func NewGemini(ctx context.Context, cfg *config.Config, log logger.Logger) (Processor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.Gemini.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Gemini.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &implGemini{
		client:  client,
		model:   cfg.Gemini.Model,
		timeout: cfg.Gemini.Timeout,
		logger:  log,
	}, nil
}

func (g *implGemini) Process(ctx context.Context, file source.InputFile) Result {
	text, err := readTranscript(file)
	if err != nil {
		return Failure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug(ctx, "Sending %s to %s (%d chars)", file.Name(), g.model, len(text))

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(text)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Failure(classifyGemini(ctx, err))
	}

	out := responseText(result)
	if out == "" {
		return Failure(fmt.Errorf("%w: empty response from gemini", ErrParse))
	}

	note, err := parseNote(stripFence([]byte(out)))
	if err != nil {
		return Failure(err)
	}
	return Success(note)
}

// classifyGemini maps API errors onto StatusError and the rest onto classifyCall.
func classifyGemini(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return &StatusError{Code: apiErr.Code, Body: truncate(strings.TrimSpace(apiErr.Message), maxErrorBody)}
	}
	return classifyCall(ctx, err)
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
