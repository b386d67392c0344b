package panel

import (
	"strings"

	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/pkg/panel/modal"
)

// Fixed texts of the non-content views.
const (
	LoadingText = "Loading help..."
	NoDataText  = "No help data available."
)

// RenderDocument renders the content view body: the document title as a
// heading, then each section's title followed by its items, in order. It
// also returns the line offset of every section heading.
func RenderDocument(doc *help.Response, width int) (string, []int) {
	var (
		parts   []string
		offsets = make([]int, 0, len(doc.Sections))
		lines   int
	)
	add := func(s string) {
		parts = append(parts, s)
		lines += strings.Count(s, "\n") + 1
	}

	add(section(modal.Heading(doc.Title, 1), width))
	for _, s := range doc.Sections {
		add("")
		offsets = append(offsets, lines)
		add(section(modal.Heading(s.Title, 2), width))
		if len(s.Items) > 0 {
			add(section(modal.Bullets(s.Items), width))
		}
	}
	return strings.Join(parts, "\n"), offsets
}

func section(s modal.Section, width int) string {
	return s.Render(width, "").Content
}
