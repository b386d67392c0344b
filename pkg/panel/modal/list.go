package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ListItem represents an item in a list section.
type ListItem struct {
	ID    string // Returned as the action when the item is chosen
	Label string
	Data  any
}

// ListOption is a functional option for List sections.
type ListOption func(*listSection)

// listSection renders a scrollable list of items.
type listSection struct {
	id           string
	items        []ListItem
	selectedIdx  *int // owned by the caller
	maxVisible   int
	scrollOffset int
	emptyText    string
}

// List creates a list section with selectable items.
// selectedIdx is a pointer to the currently selected index (can be nil for no selection).
func List(id string, items []ListItem, selectedIdx *int, opts ...ListOption) Section {
	s := &listSection{
		id:          id,
		items:       items,
		selectedIdx: selectedIdx,
		maxVisible:  5,
		emptyText:   "(no items)",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithEmptyText sets the placeholder shown when the list has no items.
func WithEmptyText(text string) ListOption {
	return func(s *listSection) { s.emptyText = text }
}

// WithMaxVisible sets the maximum number of visible items.
func WithMaxVisible(n int) ListOption {
	return func(s *listSection) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

func (s *listSection) Render(contentWidth int, focusID string) RenderedSection {
	if len(s.items) == 0 {
		return RenderedSection{Content: MutedText.Render(s.emptyText)}
	}

	visibleCount := min(s.maxVisible, len(s.items))
	selectedIdx := 0
	if s.selectedIdx != nil {
		selectedIdx = *s.selectedIdx
	}

	// Adjust scroll to keep selection visible
	if selectedIdx < s.scrollOffset {
		s.scrollOffset = selectedIdx
	} else if selectedIdx >= s.scrollOffset+visibleCount {
		s.scrollOffset = selectedIdx - visibleCount + 1
	}

	// Clamp scroll offset
	maxScroll := max(0, len(s.items)-visibleCount)
	s.scrollOffset = clamp(s.scrollOffset, 0, maxScroll)

	listIsFocused := focusID == s.id

	var sb strings.Builder
	totalHeight := 0

	for i := 0; i < visibleCount; i++ {
		itemIdx := s.scrollOffset + i
		if itemIdx >= len(s.items) {
			break
		}

		item := s.items[itemIdx]
		isSelected := s.selectedIdx != nil && *s.selectedIdx == itemIdx

		style := ListItemNormal
		if isSelected && listIsFocused {
			style = ListItemFocused
		} else if isSelected {
			style = ListItemSelected
		}

		cursor := "  "
		if isSelected {
			cursor = ListCursor.Render("> ")
		}

		line := cursor + style.Render(ansi.Truncate(item.Label, max(1, contentWidth-2), "…"))
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
		totalHeight++
	}

	content := sb.String()
	hasTopIndicator := s.scrollOffset > 0
	if hasTopIndicator {
		content = MutedText.Render("↑ more above") + "\n" + content
		totalHeight++
	}
	if s.scrollOffset+visibleCount < len(s.items) {
		content = content + "\n" + MutedText.Render("↓ more below")
		totalHeight++
	}

	// The list is one focusable; arrow keys move within it.
	focusables := []FocusableInfo{{
		ID:      s.id,
		OffsetX: 0,
		OffsetY: 0,
		Width:   contentWidth,
		Height:  totalHeight,
	}}

	return RenderedSection{
		Content:    content,
		Focusables: focusables,
	}
}

func (s *listSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if focusID != s.id {
		return "", nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return "", nil
	}

	if s.selectedIdx == nil {
		return "", nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if *s.selectedIdx > 0 {
			*s.selectedIdx--
		}
		return "", nil

	case "down", "j":
		if *s.selectedIdx < len(s.items)-1 {
			*s.selectedIdx++
		}
		return "", nil

	case "enter":
		if *s.selectedIdx >= 0 && *s.selectedIdx < len(s.items) {
			return s.items[*s.selectedIdx].ID, nil
		}
		return "", nil

	case "home":
		*s.selectedIdx = 0
		return "", nil

	case "end":
		*s.selectedIdx = max(0, len(s.items)-1)
		return "", nil
	}

	return "", nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
