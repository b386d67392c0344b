// Package output formats helpctl command output for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Stdout and Stderr are swapped out by tests.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	getenv = os.Getenv
)

// Success prints a success message to stdout
func Success(format string, args ...interface{}) {
	fmt.Fprintln(Stdout, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Warning prints a warning to stderr
func Warning(format string, args ...interface{}) {
	fmt.Fprintln(Stderr, warningStyle.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Error prints an error to stderr
func Error(format string, args ...interface{}) {
	fmt.Fprintln(Stderr, errorStyle.Render("Error: "+fmt.Sprintf(format, args...)))
}

// JSON writes v to stdout as indented JSON
func JSON(v interface{}) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONError writes an error object to stdout for --format json callers
func JSONError(code, message string) {
	_ = JSON(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
