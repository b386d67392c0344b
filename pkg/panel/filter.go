package panel

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/pkg/panel/modal"
)

const (
	matchListID = "matches"
	maxMatches  = 50
)

// filterEntry is one help item flattened out of its section.
type filterEntry struct {
	section int
	text    string
	label   string
}

// filterEntries adapts a flattened document to fuzzy.Source.
type filterEntries []filterEntry

func (e filterEntries) String(i int) string { return e[i].text }
func (e filterEntries) Len() int            { return len(e) }

type filterState struct {
	active   bool
	input    textinput.Model
	entries  filterEntries
	matches  []filterEntry
	selected int
	modal    *modal.Modal
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter help items"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	return ti
}

func (f *filterState) close() {
	f.active = false
	f.input.Blur()
	f.input.Reset()
	f.matches = nil
	f.selected = 0
	f.modal = nil
}

func flatten(doc *help.Response) filterEntries {
	var out filterEntries
	for si, s := range doc.Sections {
		for _, item := range s.Items {
			out = append(out, filterEntry{section: si, text: item, label: item + "  (" + s.Title + ")"})
		}
	}
	return out
}

// matchEntries returns the entries matching query, best first. An empty
// query matches everything in document order.
func matchEntries(entries filterEntries, query string) []filterEntry {
	if query == "" {
		if len(entries) > maxMatches {
			return entries[:maxMatches]
		}
		return entries
	}
	found := fuzzy.FindFrom(query, entries)
	out := make([]filterEntry, 0, min(len(found), maxMatches))
	for _, m := range found {
		if len(out) == maxMatches {
			break
		}
		out = append(out, entries[m.Index])
	}
	return out
}

func (p *Panel) openFilter() tea.Cmd {
	p.filter.active = true
	p.filter.entries = flatten(p.content)
	p.filter.input.Reset()
	p.refreshMatches()
	return p.filter.input.Focus()
}

func (p *Panel) refreshMatches() {
	p.filter.matches = matchEntries(p.filter.entries, p.filter.input.Value())
	p.filter.selected = 0
	p.filter.modal = nil
}

// FilterMatches returns the labels of the current filter matches.
func (p *Panel) FilterMatches() []string {
	out := make([]string, len(p.filter.matches))
	for i, m := range p.filter.matches {
		out[i] = m.text
	}
	return out
}

// Filtering reports whether the filter input is open.
func (p *Panel) Filtering() bool { return p.filter.active }

func (p *Panel) filterModal() *modal.Modal {
	if p.filter.modal != nil {
		return p.filter.modal
	}
	items := make([]modal.ListItem, len(p.filter.matches))
	for i, m := range p.filter.matches {
		items[i] = modal.ListItem{ID: strconv.Itoa(i), Label: m.label, Data: m.section}
	}

	visible := 8
	if p.height > 0 {
		visible = max(3, p.height-frameVertical-6)
	}

	m := p.newModal("Filter help", modal.WithHintText("↑/↓ select   enter jump   esc cancel")).
		AddSection(modal.Custom(func(int) string { return p.filter.input.View() })).
		AddSection(modal.Spacer()).
		AddSection(modal.List(matchListID, items, &p.filter.selected,
			modal.WithMaxVisible(visible),
			modal.WithEmptyText("No matching items")))
	m.SetFocus(matchListID)
	p.filter.modal = m
	return m
}

func (p *Panel) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Quit):
		p.filter.close()
		return func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, p.keys.CancelInput):
		p.filter.close()
		return nil
	case key.Matches(msg, p.keys.Up):
		p.filterModal().HandleKey(tea.KeyMsg{Type: tea.KeyUp})
		return nil
	case key.Matches(msg, p.keys.Down):
		p.filterModal().HandleKey(tea.KeyMsg{Type: tea.KeyDown})
		return nil
	case key.Matches(msg, p.keys.Choose):
		action, _ := p.filterModal().HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
		if i, err := strconv.Atoi(action); err == nil && i < len(p.filter.matches) {
			p.jumpToSection(p.filter.matches[i].section)
		}
		return nil
	}

	before := p.filter.input.Value()
	var cmd tea.Cmd
	p.filter.input, cmd = p.filter.input.Update(msg)
	if p.filter.input.Value() != before {
		p.refreshMatches()
	}
	return cmd
}

// jumpToSection closes the filter and scrolls the section heading to the top.
func (p *Panel) jumpToSection(section int) {
	p.filter.close()
	if section < 0 || section >= len(p.offsets) {
		return
	}
	if p.scrollable() {
		p.viewport.SetYOffset(p.offsets[section])
	}
}

// ScrollOffset returns the first visible body line.
func (p *Panel) ScrollOffset() int { return p.viewport.YOffset }
