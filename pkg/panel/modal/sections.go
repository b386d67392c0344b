package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// staticSection is the shared base for sections without key handling.
type staticSection struct {
	render func(contentWidth int) string
}

func (s *staticSection) Render(contentWidth int, _ string) RenderedSection {
	return RenderedSection{Content: s.render(contentWidth)}
}

func (s *staticSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

func styledText(style lipgloss.Style, text string) Section {
	return &staticSection{render: func(w int) string {
		return style.Render(ansi.Wrap(text, w, " -"))
	}}
}

// Text renders body text wrapped to the content width.
func Text(s string) Section { return styledText(Body, s) }

// Muted renders de-emphasized text.
func Muted(s string) Section { return styledText(MutedText, s) }

// ErrorText renders text in the error color.
func ErrorText(s string) Section { return styledText(ErrorStyle, s) }

// Spacer renders a blank line.
func Spacer() Section {
	return &staticSection{render: func(int) string { return "" }}
}

// Heading renders a heading. Level 1 is the document title, anything else a
// sub-heading.
func Heading(s string, level int) Section {
	style := Heading2
	if level <= 1 {
		style = Heading1
	}
	return &staticSection{render: func(w int) string {
		return style.Render(ansi.Truncate(s, w, "…"))
	}}
}

// BulletMark prefixes every bullet entry.
const BulletMark = "•"

// Bullets renders an unordered list. Long entries wrap with a hanging
// indent. An empty list takes no space.
func Bullets(items []string) Section {
	return &bulletSection{items: items}
}

type bulletSection struct {
	staticSection
	items []string
}

func (s *bulletSection) Render(contentWidth int, _ string) RenderedSection {
	if len(s.items) == 0 {
		return RenderedSection{Skip: true}
	}
	return RenderedSection{Content: renderBullets(s.items, contentWidth)}
}

func renderBullets(items []string, w int) string {
	indent := strings.Repeat(" ", ansi.StringWidth(BulletMark)+1)
	textWidth := max(1, w-len(indent)-1)

	lines := make([]string, 0, len(items))
	for _, item := range items {
		wrapped := strings.Split(ansi.Wrap(item, textWidth, " -"), "\n")
		for i, l := range wrapped {
			if i == 0 {
				lines = append(lines, " "+BulletStyle.Render(BulletMark)+" "+Body.Render(l))
			} else {
				lines = append(lines, " "+indent+Body.Render(l))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Custom wraps content rendered outside the library.
func Custom(render func(contentWidth int) string) Section {
	return &staticSection{render: render}
}

type whenSection struct {
	cond    func() bool
	section Section
}

// When renders section only while cond returns true.
func When(cond func() bool, section Section) Section {
	return &whenSection{cond: cond, section: section}
}

func (s *whenSection) Render(contentWidth int, focusID string) RenderedSection {
	if !s.cond() {
		return RenderedSection{Skip: true}
	}
	return s.section.Render(contentWidth, focusID)
}

func (s *whenSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if !s.cond() {
		return "", nil
	}
	return s.section.Update(msg, focusID)
}
