// Package report renders a run summary for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nguyentantai21042004/voicenote-flow/internal/dispatcher"
)

// Render formats s as a bordered block: totals, then one line per failed file.
func Render(stage string, s dispatcher.Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s run %s", stage, shortID(s.RunID))))
	b.WriteString("\n")
	b.WriteString(row("files", humanize.Comma(int64(s.Total))))
	b.WriteString(row("succeeded", okStyle.Render(humanize.Comma(int64(s.Succeeded)))))
	if s.Failed > 0 {
		b.WriteString(row("failed", failStyle.Render(humanize.Comma(int64(s.Failed)))))
	} else {
		b.WriteString(row("failed", "0"))
	}
	if s.Skipped > 0 {
		b.WriteString(row("skipped", warnStyle.Render(humanize.Comma(int64(s.Skipped)))))
	}
	b.WriteString(row("elapsed", s.Duration.Round(time.Millisecond).String()))

	if s.Interrupted {
		b.WriteString(warnStyle.Render("interrupted before all files were started"))
		b.WriteString("\n")
	}

	for _, o := range s.Failures() {
		b.WriteString(failStyle.Render("✗ "))
		b.WriteString(fmt.Sprintf("%s: %v\n", o.File.Name(), o.Err))
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
