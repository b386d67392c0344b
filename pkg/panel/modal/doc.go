// Package modal provides a small declarative modal dialog library for
// Bubble Tea programs.
//
// A modal is a titled, bordered box built from a list of sections. Sections
// render themselves into the modal's content width; the modal adds the title,
// the keyboard hints and the frame, and centers the result on screen.
//
// # Quick Start
//
//	m := modal.New("Help", modal.WithWidth(70)).
//	    AddSection(modal.Heading("Getting started", 1)).
//	    AddSection(modal.Bullets([]string{"Open a file", "Press enter"})).
//	    AddSection(modal.Spacer())
//
//	// In View():
//	content := m.Render(screenW, screenH)
//
//	// In Update():
//	if action, cmd := m.HandleKey(keyMsg); action == modal.ActionClose {
//	    return closePanel()
//	}
//
// # Built-in Sections
//
//   - Text(s string) - static text, auto-wrapped
//   - Muted(s string) / ErrorText(s string) - de-emphasized and error text
//   - Heading(s string, level int) - level 1 title or level 2 sub-heading
//   - Bullets(items []string) - unordered list, one wrapped entry per item
//   - Spacer() - blank line
//   - List(id string, items []ListItem, selectedIdx *int, opts...) - scrollable selectable list
//   - When(condition func() bool, section) - conditional rendering
//   - Custom(renderFn) - escape hatch for content rendered elsewhere
//
// # Options
//
//   - WithWidth(w int) - set modal width (default: 50)
//   - WithVariant(v Variant) - set border color (Default, Danger, Info)
//   - WithHints(show bool) - show/hide keyboard hints at bottom
//   - WithHintText(s string) - replace the default hint line
package modal
