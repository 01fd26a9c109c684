package source

import "testing"

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "disjoint later span extends end",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "earlier span extends start",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 2, End: 5},
			expected: Span{File: 1, Start: 2, End: 20},
		},
		{
			name:     "contained span changes nothing",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 15},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "different file ignored",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.mml", []byte("let a = 1;\nlet bb = 2;\n"))

	tests := []struct {
		name  string
		span  Span
		start LineCol
	}{
		{"start of file", Span{File: id, Start: 0, End: 3}, LineCol{Line: 1, Col: 1}},
		{"mid first line", Span{File: id, Start: 4, End: 5}, LineCol{Line: 1, Col: 5}},
		{"start of second line", Span{File: id, Start: 11, End: 14}, LineCol{Line: 2, Col: 1}},
		{"mid second line", Span{File: id, Start: 15, End: 17}, LineCol{Line: 2, Col: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(tt.span)
			if start != tt.start {
				t.Errorf("Resolve() start = %v, want %v", start, tt.start)
			}
		})
	}
}

func TestFile_Line(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.mml", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		lineNum  uint32
		expected string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := f.Line(tt.lineNum); got != tt.expected {
			t.Errorf("Line(%d) = %q, want %q", tt.lineNum, got, tt.expected)
		}
	}
}

func TestFileSet_NormalizesCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("crlf.mml", []byte("a\nb"), 0)
	if fs.Get(id).Path != "crlf.mml" {
		t.Fatalf("unexpected path %q", fs.Get(id).Path)
	}
	content, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if string(content) != "a\nb\rc" || !changed {
		t.Errorf("normalizeCRLF = %q (%t)", content, changed)
	}
}
