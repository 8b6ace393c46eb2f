package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/voicenote-flow/internal/dispatcher"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

func TestRender(t *testing.T) {
	s := dispatcher.Summary{
		RunID:     "0f8e2c1a-1111-2222-3333-444455556666",
		Total:     1204,
		Succeeded: 1202,
		Failed:    1,
		Skipped:   1,
		Duration:  1500 * time.Millisecond,
		Outcomes: []dispatcher.Outcome{
			{File: source.NewInputFile("/in/a.mp3"), Output: "/out/a.md"},
			{File: source.NewInputFile("/in/b.mp3"), Err: errors.New("bad status 500")},
			{File: source.NewInputFile("/in/c.mp3"), Err: dispatcher.ErrSkipped},
		},
		Interrupted: true,
	}

	got := Render("transcribe", s)

	for _, want := range []string{
		"transcribe run 0f8e2c1a",
		"1,204",
		"1,202",
		"1.5s",
		"interrupted",
		"b.mp3: bad status 500",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "c.mp3") {
		t.Errorf("skipped file listed as failure:\n%s", got)
	}
}

func TestRender_NoFailures(t *testing.T) {
	got := Render("polish", dispatcher.Summary{RunID: "abc", Total: 2, Succeeded: 2})
	if strings.Contains(got, "✗") || strings.Contains(got, "interrupted") {
		t.Errorf("unexpected failure lines:\n%s", got)
	}
}
