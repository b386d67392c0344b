package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/loanbuddy/helpctl/internal/help"
)

// Markdown converts doc to markdown: the title as h1, each section as h2
// followed by a bullet list.
func Markdown(doc *help.Response) string {
	var b strings.Builder
	b.WriteString("# " + doc.Title + "\n")
	for _, sec := range doc.Sections {
		b.WriteString("\n## " + sec.Title + "\n")
		if len(sec.Items) == 0 {
			continue
		}
		b.WriteString("\n")
		for _, item := range sec.Items {
			b.WriteString("- " + item + "\n")
		}
	}
	return b.String()
}

// RenderMarkdown styles md for the terminal, wrapping at width. GLAMOUR_STYLE
// overrides the detected style.
func RenderMarkdown(md string, width int) (string, error) {
	style := glamour.WithAutoStyle()
	if s := strings.TrimSpace(getenv("GLAMOUR_STYLE")); s != "" {
		style = glamour.WithStandardStyle(s)
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
