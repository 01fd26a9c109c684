package diag

import "mml/internal/source"

// Note attaches a secondary span to a diagnostic, e.g. the first
// declaration site of a duplicated name.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one renderable finding. Primary anchors the caret;
// Stage records which pipeline stage produced it.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Stage    Stage
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New constructs a diagnostic with no notes.
func New(sev Severity, code Code, stage Stage, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Stage:    stage,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError is a shortcut for SevError diagnostics.
func NewError(code Code, stage Stage, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, stage, primary, msg)
}

// WithNote returns a copy with an extra note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, 0, len(d.Notes)+1)
	notes = append(notes, d.Notes...)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}
