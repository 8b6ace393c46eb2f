package writer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/voicenote-flow/internal/config"
	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
	"github.com/nguyentantai21042004/voicenote-flow/internal/source"
)

const (
	dateTokenLen      = 10
	untitledFilename  = "untitled"
	untitledHeading   = "Untitled"
	missingTranscript = "No transcript available."
)

type implNoteWriter struct {
	dir    string
	format string
}

// NewNote creates a Writer for polished notes in the given format
// (config.FormatMarkdown or config.FormatDocx).
func NewNote(dir, format string) Writer {
	return &implNoteWriter{dir: dir, format: format}
}

func (w *implNoteWriter) Write(ctx context.Context, file source.InputFile, payload processor.Payload) (string, error) {
	note, ok := payload.(processor.Note)
	if !ok {
		return "", fmt.Errorf("%w: note writer got %T", ErrWrite, payload)
	}

	switch w.format {
	case config.FormatDocx:
		path := NotePath(w.dir, file, note.Title, ".docx")
		if err := commit(path, func(tmp string) error { return renderDocx(note, tmp) }); err != nil {
			return "", err
		}
		return path, nil
	default:
		path := NotePath(w.dir, file, note.Title, ".md")
		if err := writeText(path, RenderMarkdown(note)); err != nil {
			return "", err
		}
		return path, nil
	}
}

// NotePath returns <dir>/<date token> - <sanitized title><ext>.
func NotePath(dir string, file source.InputFile, title, ext string) string {
	if title == "" {
		title = untitledFilename
	}
	return filepath.Join(dir, DateToken(file.Stem)+" - "+SanitizeTitle(title)+ext)
}

// DateToken returns the first 10 characters of stem, or all of it when shorter.
func DateToken(stem string) string {
	runes := []rune(stem)
	if len(runes) <= dateTokenLen {
		return stem
	}
	return string(runes[:dateTokenLen])
}

// SanitizeTitle replaces every character outside [A-Za-z0-9 _-] with '_'.
func SanitizeTitle(title string) string {
	var sb strings.Builder
	sb.Grow(len(title))
	for _, r := range title {
		if isSafeRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '_':
		return true
	}
	return false
}

// RenderMarkdown formats a note as the polished markdown document.
func RenderMarkdown(n processor.Note) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", heading(n))

	sb.WriteString("## Key Points\n")
	for _, p := range n.KeyPoints {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	sb.WriteString("\n")

	if len(n.ActionItems) > 0 {
		sb.WriteString("## Action Items\n")
		for _, item := range n.ActionItems {
			fmt.Fprintf(&sb, "- [ ] %s\n", item)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Transcript\n\n")
	sb.WriteString(transcriptBody(n))

	return sb.String()
}

func heading(n processor.Note) string {
	if n.Title == "" {
		return untitledHeading
	}
	return n.Title
}

// transcriptBody prefers the formatted transcript, then the raw one, then a placeholder.
func transcriptBody(n processor.Note) string {
	switch {
	case n.FormattedTranscript != "":
		return n.FormattedTranscript
	case n.Transcript != "":
		return n.Transcript
	default:
		return missingTranscript
	}
}
