// Package source tracks positions within grammar and input text.
package source

import "fmt"

// Loc is a 1-indexed line and column within a named file. It is attached to
// entities for diagnostics only and never takes part in identity.
type Loc struct {
	File string
	Line int
	Col  int
}

func At(file string, line, col int) Loc {
	return Loc{File: file, Line: line, Col: col}
}

// IsValid reports whether l carries a line number.
func (l Loc) IsValid() bool {
	return l.Line > 0
}

func (l Loc) String() string {
	if !l.IsValid() {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}
