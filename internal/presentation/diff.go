package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLines compares two renderings line by line and returns the changed
// lines prefixed with "- " or "+ ". It is empty when nothing changed.
func DiffLines(prev, cur string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(prev, cur)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}
	return out
}

// RenderDiff writes DiffLines output with additions and deletions colored.
func (f *Formatter) RenderDiff(lines []string) error {
	if len(lines) == 0 {
		return f.RenderHeading(mutedStyle.Render("no changes"))
	}
	var sb strings.Builder
	for _, l := range lines {
		style := okStyle
		if strings.HasPrefix(l, "- ") {
			style = errStyle
		}
		sb.WriteString(style.Render(l))
		sb.WriteByte('\n')
	}
	_, err := f.writer.Write([]byte(sb.String()))
	return err
}
