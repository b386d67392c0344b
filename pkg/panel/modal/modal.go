package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActionClose is returned by HandleKey when the user dismisses the modal.
const ActionClose = "close"

const (
	defaultWidth = 50
	minWidth     = 20
	// Border (1 each side) plus horizontal padding (2 each side).
	frameHorizontal = 6
)

// Variant selects the frame color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantInfo
)

// Section is a renderable block inside a modal.
type Section interface {
	Render(contentWidth int, focusID string) RenderedSection
	Update(msg tea.Msg, focusID string) (string, tea.Cmd)
}

// RenderedSection is the output of Section.Render.
type RenderedSection struct {
	Content    string
	Focusables []FocusableInfo
	Skip       bool // omit from the layout entirely
}

// FocusableInfo describes a focusable element inside a rendered section,
// relative to the section's top-left corner.
type FocusableInfo struct {
	ID      string
	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// Option is a functional option for New.
type Option func(*Modal)

// WithWidth sets the outer modal width.
func WithWidth(w int) Option {
	return func(m *Modal) {
		if w >= minWidth {
			m.width = w
		}
	}
}

// WithVariant sets the frame variant.
func WithVariant(v Variant) Option {
	return func(m *Modal) { m.variant = v }
}

// WithHints shows or hides the hint line.
func WithHints(show bool) Option {
	return func(m *Modal) { m.showHints = show }
}

// WithHintText replaces the default hint line.
func WithHintText(s string) Option {
	return func(m *Modal) { m.hintText = s }
}

// Modal is a titled box of sections.
type Modal struct {
	title     string
	width     int
	variant   Variant
	showHints bool
	hintText  string
	sections  []Section
	focusID   string
}

// New creates a modal with the given title.
func New(title string, opts ...Option) *Modal {
	m := &Modal{
		title:     title,
		width:     defaultWidth,
		showHints: true,
		hintText:  "esc close",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSection appends a section and returns the modal for chaining.
func (m *Modal) AddSection(s Section) *Modal {
	m.sections = append(m.sections, s)
	return m
}

// Title returns the modal title.
func (m *Modal) Title() string { return m.title }

// Width returns the configured outer width.
func (m *Modal) Width() int { return m.width }

// SetFocus sets the focused element ID. Key routing goes to the section
// owning that ID.
func (m *Modal) SetFocus(id string) { m.focusID = id }

// FocusedID returns the focused element ID.
func (m *Modal) FocusedID() string { return m.focusID }

// ContentWidth returns the inner width available to sections when the modal
// is rendered on a screen of the given width.
func (m *Modal) ContentWidth(screenW int) int {
	return max(1, m.outerWidth(screenW)-frameHorizontal)
}

func (m *Modal) outerWidth(screenW int) int {
	w := m.width
	if screenW > 0 && w > screenW-2 {
		w = screenW - 2
	}
	return max(minWidth, w)
}

// Body renders only the sections, joined top to bottom.
func (m *Modal) Body(contentWidth int) string {
	parts := make([]string, 0, len(m.sections))
	for _, s := range m.sections {
		rs := s.Render(contentWidth, m.focusID)
		if rs.Skip {
			continue
		}
		parts = append(parts, rs.Content)
	}
	return strings.Join(parts, "\n")
}

// Render draws the full modal and centers it on a screenW x screenH canvas.
// A zero screen size renders the box without placement.
func (m *Modal) Render(screenW, screenH int) string {
	contentWidth := m.ContentWidth(screenW)

	var b strings.Builder
	if m.title != "" {
		b.WriteString(ModalTitle.Render(m.title))
		b.WriteString("\n\n")
	}
	b.WriteString(m.Body(contentWidth))
	if m.showHints && m.hintText != "" {
		b.WriteString("\n\n")
		b.WriteString(HintStyle.Render(m.hintText))
	}

	box := frameStyle(m.variant).
		Width(contentWidth + frameHorizontal - 2).
		Render(b.String())

	if screenW <= 0 || screenH <= 0 {
		return box
	}
	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, box)
}

// HandleKey processes a key press. Esc closes the modal; other keys are
// routed to the sections and the first non-empty action wins.
func (m *Modal) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return ActionClose, nil
	}
	for _, s := range m.sections {
		if action, cmd := s.Update(msg, m.focusID); action != "" || cmd != nil {
			return action, cmd
		}
	}
	return "", nil
}
