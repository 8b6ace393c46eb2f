package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/logger"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

type implTranscriber struct {
	cfg         config.DeepgramConfig
	failOnEmpty bool
	http        *caller
	logger      logger.Logger
}

// NewTranscriber creates a Processor that sends audio to the Deepgram pre-recorded API.
func NewTranscriber(cfg *config.Config, log logger.Logger) Processor {
	return &implTranscriber{
		cfg:         cfg.Deepgram,
		failOnEmpty: cfg.Transcribe.EmptyResponse == config.EmptyResponseFail,
		http:        newCaller(cfg.Deepgram.Timeout),
		logger:      log,
	}
}

// listenResponse models only the path we read. Every level is optional so
// that a missing level is detected explicitly instead of decoding to "".
type listenResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript *string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// responseShape names how much of results.channels[0].alternatives[0].transcript was present.
type responseShape string

const (
	shapeComplete       responseShape = "complete"
	shapeNoResults      responseShape = "no results"
	shapeNoChannels     responseShape = "no channels"
	shapeNoAlternatives responseShape = "no alternatives"
	shapeNoTranscript   responseShape = "no transcript field"
)

func (r listenResponse) transcript() (string, responseShape) {
	switch {
	case r.Results == nil:
		return "", shapeNoResults
	case len(r.Results.Channels) == 0:
		return "", shapeNoChannels
	case len(r.Results.Channels[0].Alternatives) == 0:
		return "", shapeNoAlternatives
	case r.Results.Channels[0].Alternatives[0].Transcript == nil:
		return "", shapeNoTranscript
	}
	return *r.Results.Channels[0].Alternatives[0].Transcript, shapeComplete
}

// Process uploads the file's bytes and extracts the first alternative of the first channel.
func (t *implTranscriber) Process(ctx context.Context, file source.InputFile) Result {
	audio, err := os.ReadFile(file.Path)
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrRead, err))
	}

	endpoint, err := t.endpoint()
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrNetwork, err))
	}

	t.logger.Debug(ctx, "Uploading %s (%s) to %s", file.Name(), humanize.Bytes(uint64(len(audio))), t.cfg.Model)

	header := http.Header{}
	header.Set("Authorization", "Token "+t.cfg.APIKey)
	header.Set("Content-Type", t.cfg.MimeType)

	body, err := t.http.post(ctx, endpoint, header, bytes.NewReader(audio))
	if err != nil {
		return Failure(err)
	}

	var resp listenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Errorf("%w: decode transcription response: %w", ErrParse, err))
	}

	text, shape := resp.transcript()
	if shape != shapeComplete {
		if t.failOnEmpty {
			return Failure(fmt.Errorf("%w: %s", ErrMissingTranscript, shape))
		}
		t.logger.Warn(ctx, "Response for %s has %s, writing empty transcript", file.Name(), shape)
	}

	return Success(Transcript(text))
}

func (t *implTranscriber) endpoint() (string, error) {
	u, err := url.Parse(t.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse deepgram url: %w", err)
	}
	q := u.Query()
	if t.cfg.Model != "" {
		q.Set("model", t.cfg.Model)
	}
	q.Set("smart_format", strconv.FormatBool(t.cfg.SmartFormat))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
