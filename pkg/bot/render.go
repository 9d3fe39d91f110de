package bot

import (
	"html"
	"strings"

	"github.com/fireflybot/fireflybot/pkg/report"
)

// RenderHTML converts a section list into Telegram HTML. All dynamic text is
// escaped; only the markup this renderer emits survives.
func RenderHTML(sections []report.Section) string {
	var b strings.Builder
	for _, s := range sections {
		switch s.Kind {
		case report.SectionHeader:
			b.WriteString("<b>")
			b.WriteString(html.EscapeString(s.Value))
			b.WriteString("</b>\n")
		case report.SectionKeyValue:
			b.WriteString("<b>")
			b.WriteString(html.EscapeString(s.Label))
			b.WriteString(":</b> ")
			b.WriteString(html.EscapeString(s.Value))
			b.WriteString("\n")
		default:
			b.WriteString(html.EscapeString(s.Value))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderPlain converts a section list into plain text for terminal output.
func RenderPlain(sections []report.Section) string {
	var b strings.Builder
	for _, s := range sections {
		if s.Kind == report.SectionKeyValue {
			b.WriteString(s.Label)
			b.WriteString(": ")
		}
		b.WriteString(s.Value)
		b.WriteString("\n")
	}
	return b.String()
}
