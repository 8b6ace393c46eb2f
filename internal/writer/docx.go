package writer

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/voicenote-flow/internal/processor"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	textColor = "000000"
)

var reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// renderDocx writes the note to outputPath with the same sections as RenderMarkdown.
func renderDocx(n processor.Note, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), heading(n), true, 16)

	addStyledRun(doc.AddParagraph(""), "Key Points", true, headingSize(2))
	for _, p := range n.KeyPoints {
		addRichText(doc.AddParagraph(""), "• "+p)
	}

	if len(n.ActionItems) > 0 {
		addStyledRun(doc.AddParagraph(""), "Action Items", true, headingSize(2))
		for _, item := range n.ActionItems {
			addRichText(doc.AddParagraph(""), "☐ "+item)
		}
	}

	addStyledRun(doc.AddParagraph(""), "Transcript", true, headingSize(2))
	for _, para := range splitParagraphs(transcriptBody(n)) {
		addRichText(doc.AddParagraph(""), para)
	}

	return doc.SaveTo(outputPath)
}

// splitParagraphs breaks a transcript on blank lines and folds single newlines.
func splitParagraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		out = append(out, strings.Join(strings.Fields(block), " "))
	}
	return out
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(textColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText renders **bold** spans as bold runs.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(textColor)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(textColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
