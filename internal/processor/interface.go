package processor

import (
	"context"

	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

// Processor performs exactly one remote call for one input file.
// Every failure is reported through Result; Process never panics on bad input.
type Processor interface {
	Process(ctx context.Context, file source.InputFile) Result
}

// Payload is the successful output of a Processor: a Transcript or a Note.
type Payload interface {
	payload()
}

// Transcript is the raw text produced by the transcription stage. It may be empty.
type Transcript string

func (Transcript) payload() {}

// Note is the structured record produced by the polishing stage.
type Note struct {
	Title               string   `json:"title"`
	KeyPoints           TextList `json:"key_points"`
	ActionItems         TextList `json:"action_items"`
	FormattedTranscript string   `json:"formatted_transcript"`
	Transcript          string   `json:"transcript"`
}

func (Note) payload() {}

// Result is the terminal outcome of one Process call.
// Exactly one of Payload and Err is set.
type Result struct {
	Payload Payload
	Err     error
}

func Success(p Payload) Result {
	return Result{Payload: p}
}

func Failure(err error) Result {
	return Result{Err: err}
}

func (r Result) OK() bool {
	return r.Err == nil
}
