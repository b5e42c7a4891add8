package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"})
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	headStyle  = lipgloss.NewStyle().Bold(true)
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatGroups writes groups as indented JSON.
func (f *Formatter) FormatGroups(groups []GroupDTO) error {
	return f.encode(groups)
}

// FormatResults writes results as indented JSON.
func (f *Formatter) FormatResults(results []ResultDTO) error {
	return f.encode(results)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RenderResults writes one styled line per result.
func (f *Formatter) RenderResults(results []ResultDTO) error {
	var sb strings.Builder
	for _, r := range results {
		style := okStyle
		if r.Error != "" {
			style = errStyle
		}
		sb.WriteString(style.Render(r.Line()))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// RenderValue writes a single dispatch result, or its error, for one-shot commands.
func (f *Formatter) RenderValue(r ResultDTO) error {
	if r.Error != "" {
		_, err := fmt.Fprintln(f.writer, errStyle.Render(r.Outcome+": "+r.Error))
		return err
	}
	_, err := fmt.Fprintf(f.writer, "%s %s\n", mutedStyle.Render(r.Group+r.Args+" ="), headStyle.Render(fmt.Sprint(r.Value)))
	return err
}

// RenderHeading writes a bold heading line.
func (f *Formatter) RenderHeading(s string) error {
	_, err := fmt.Fprintln(f.writer, headStyle.Render(s))
	return err
}

// PlainResults renders results without styling, one per line.
func PlainResults(results []ResultDTO) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.Line())
		sb.WriteByte('\n')
	}
	return sb.String()
}
