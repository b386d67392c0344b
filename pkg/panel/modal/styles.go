package modal

import "github.com/charmbracelet/lipgloss"

// Colors shared by the modal frame and the sections.
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Info         = lipgloss.Color("45")
	MutedColor   = lipgloss.Color("241")
	BorderNormal = lipgloss.Color("240")
)

// Text styles
var (
	ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	MutedText  = lipgloss.NewStyle().Foreground(MutedColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)
	Body       = lipgloss.NewStyle()

	Heading1 = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	Heading2 = lipgloss.NewStyle().
			Bold(true).
			Foreground(Info)

	BulletStyle = lipgloss.NewStyle().Foreground(MutedColor)
	HintStyle   = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
)

// List styles for list sections
var (
	ListItemNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ListItemSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	ListItemFocused = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	ListCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// frameStyle returns the border style for a variant.
func frameStyle(v Variant) lipgloss.Style {
	color := BorderNormal
	switch v {
	case VariantDanger:
		color = Error
	case VariantInfo:
		color = Info
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2)
}
