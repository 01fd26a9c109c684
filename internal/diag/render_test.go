package diag

import (
	"strings"
	"testing"

	"mml/internal/source"
)

func TestRenderer_Render(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.mml", []byte("let a = 1;\nlet a = 2;\n"))

	d := NewError(SemaDuplicateName, StageDuplicates,
		source.Span{File: id, Start: 15, End: 16},
		"`a` is declared more than once in module demo").
		WithNote(source.Span{File: id, Start: 4, End: 5}, "first declared here")

	var sb strings.Builder
	r := &Renderer{Files: fs}
	r.Render(&sb, d)
	out := sb.String()

	want := []string{
		"error[MML3001]: `a` is declared more than once in module demo",
		"demo.mml:2:5",
		"2 | let a = 2;",
		"|     ^",
		"note: first declared here (demo.mml:1:5)",
	}
	for _, frag := range want {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q:\n%s", frag, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color escapes emitted with Color disabled")
	}
}

func TestRenderer_CaretCoversSpan(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.mml", []byte("let missing = nothing;\n"))

	var sb strings.Builder
	r := &Renderer{Files: fs}
	r.Render(&sb, NewError(SemaUnresolvedRef, StageResolve,
		source.Span{File: id, Start: 14, End: 21}, "cannot resolve name `nothing`"))

	if !strings.Contains(sb.String(), "^^^^^^^") {
		t.Errorf("caret does not cover the 7-byte span:\n%s", sb.String())
	}
}

func TestRenderer_NoFilesStillPrintsHeader(t *testing.T) {
	var sb strings.Builder
	r := &Renderer{}
	r.Render(&sb, NewError(UnknownCode, StageNone, source.Span{}, "boom"))
	if !strings.Contains(sb.String(), "error[MML0000]: boom") {
		t.Errorf("header missing:\n%s", sb.String())
	}
}

func TestRenderer_RenderAllSorts(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.mml", []byte("a b\n"))

	bag := NewBag(4)
	bag.Add(NewError(SemaUnresolvedRef, StageResolve, source.Span{File: id, Start: 2, End: 3}, "second"))
	bag.Add(NewError(SemaUnresolvedRef, StageResolve, source.Span{File: id, Start: 0, End: 1}, "first"))

	var sb strings.Builder
	(&Renderer{Files: fs}).RenderAll(&sb, bag)
	out := sb.String()
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Errorf("diagnostics rendered out of order:\n%s", out)
	}
}
