package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mml/internal/source"
)

// Renderer prints diagnostics against original source text.
type Renderer struct {
	Files *source.FileSet
	Color bool
}

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	warnLabel  = color.New(color.FgYellow, color.Bold)
	infoLabel  = color.New(color.FgCyan, color.Bold)
	gutter     = color.New(color.FgBlue)
)

func (r *Renderer) label(sev Severity) *color.Color {
	switch sev {
	case SevWarning:
		return warnLabel
	case SevInfo:
		return infoLabel
	default:
		return errorLabel
	}
}

func (r *Renderer) sprintf(c *color.Color, format string, args ...any) string {
	if !r.Color {
		return fmt.Sprintf(format, args...)
	}
	return c.Sprintf(format, args...)
}

// Render writes one diagnostic with a source excerpt and caret line.
func (r *Renderer) Render(w io.Writer, d Diagnostic) {
	head := r.sprintf(r.label(d.Severity), "%s[%s]", d.Severity, d.Code)
	fmt.Fprintf(w, "%s: %s\n", head, d.Message)

	if r.Files == nil || int(d.Primary.File) >= r.Files.Len() {
		return
	}
	f := r.Files.Get(d.Primary.File)
	start, _ := r.Files.Resolve(d.Primary)
	fmt.Fprintf(w, "  %s %s:%d:%d\n", r.sprintf(gutter, "-->"), f.Path, start.Line, start.Col)

	line := f.Line(start.Line)
	lineNo := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(lineNo))
	fmt.Fprintf(w, "%s %s\n", pad, r.sprintf(gutter, "|"))
	fmt.Fprintf(w, "%s %s %s\n", r.sprintf(gutter, "%s", lineNo), r.sprintf(gutter, "|"), line)

	// Caret alignment follows display width, not byte count.
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	lead := runewidth.StringWidth(line[:col])
	width := int(d.Primary.Len())
	if remain := len(line) - col; width > remain {
		width = remain
	}
	if width > 0 {
		width = runewidth.StringWidth(line[col : col+width])
	}
	if width < 1 {
		width = 1
	}
	carets := strings.Repeat("^", width)
	fmt.Fprintf(w, "%s %s %s%s\n", pad, r.sprintf(gutter, "|"), strings.Repeat(" ", lead), r.sprintf(r.label(d.Severity), "%s", carets))

	for _, note := range d.Notes {
		if int(note.Span.File) < r.Files.Len() && !note.Span.Empty() {
			nf := r.Files.Get(note.Span.File)
			ns, _ := r.Files.Resolve(note.Span)
			fmt.Fprintf(w, "%s %s note: %s (%s:%d:%d)\n", pad, r.sprintf(gutter, "="), note.Msg, nf.Path, ns.Line, ns.Col)
			continue
		}
		fmt.Fprintf(w, "%s %s note: %s\n", pad, r.sprintf(gutter, "="), note.Msg)
	}
}

// RenderAll renders every diagnostic in the bag, sorted.
func (r *Renderer) RenderAll(w io.Writer, bag *Bag) {
	bag.Sort()
	for _, d := range bag.Items() {
		r.Render(w, d)
		fmt.Fprintln(w)
	}
}
