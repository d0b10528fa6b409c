// Package diag collects the errors and warnings of one compilation.
//
// Every error is printed as it is reported and counted; the count never goes
// down, so pipeline phases use it as a gate.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/arr-ai/lmgen/source"
)

type Kind int

const (
	UsageError Kind = iota
	IOError
	LexicalError
	SyntaxError
	SemanticError
	Warning
)

func (k Kind) String() string {
	switch k {
	case UsageError:
		return "usage"
	case IOError:
		return "io"
	case LexicalError:
		return "lexical"
	case SyntaxError:
		return "syntax"
	case SemanticError:
		return "semantic"
	case Warning:
		return "warning"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is one reported message.
type Diagnostic struct {
	Kind    Kind
	Loc     source.Loc
	Message string
	// Program is set for errors about the invocation rather than the input.
	Program string
}

func (d Diagnostic) IsError() bool {
	return d.Kind != Warning
}

func (d Diagnostic) String() string {
	severity := "error"
	if !d.IsError() {
		severity = "warning"
	}
	switch {
	case d.Program != "":
		return fmt.Sprintf("%s: %s: %s", severity, d.Program, d.Message)
	case d.Loc.IsValid():
		return fmt.Sprintf("%s: %s:%d:%d: %s", severity, d.Loc.File, d.Loc.Line, d.Loc.Col, d.Message)
	case d.Loc.File != "":
		return fmt.Sprintf("%s: %s: %s", severity, d.Loc.File, d.Message)
	}
	return fmt.Sprintf("%s: %s", severity, d.Message)
}

type Diagnostics struct {
	program  string
	w        io.Writer
	errors   int
	warnings int
	list     []Diagnostic
}

// New returns an empty Diagnostics printing to w. program names the tool in
// program-level errors.
func New(program string, w io.Writer) *Diagnostics {
	if w == nil {
		w = io.Discard
	}
	return &Diagnostics{program: program, w: w}
}

func (d *Diagnostics) report(diag Diagnostic) {
	d.list = append(d.list, diag)
	if diag.IsError() {
		d.errors++
	} else {
		d.warnings++
	}
	fmt.Fprintln(d.w, diag.String())
}

// Errorf records an error at loc.
func (d *Diagnostics) Errorf(kind Kind, loc source.Loc, format string, args ...interface{}) {
	if kind == Warning {
		kind = SemanticError
	}
	d.report(Diagnostic{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// ProgramErrorf records an error about the invocation itself.
func (d *Diagnostics) ProgramErrorf(kind Kind, format string, args ...interface{}) {
	if kind == Warning {
		kind = UsageError
	}
	d.report(Diagnostic{Kind: kind, Program: d.program, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Warningf(loc source.Loc, format string, args ...interface{}) {
	d.report(Diagnostic{Kind: Warning, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) ErrorCount() int {
	return d.errors
}

func (d *Diagnostics) WarningCount() int {
	return d.warnings
}

// OK reports whether no error has been recorded so far.
func (d *Diagnostics) OK() bool {
	return d.errors == 0
}

// All returns every diagnostic in report order.
func (d *Diagnostics) All() []Diagnostic {
	return append([]Diagnostic(nil), d.list...)
}

// Count returns the number of errors of the given kind.
func (d *Diagnostics) Count(kind Kind) int {
	n := 0
	for _, diag := range d.list {
		if diag.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Diagnostics) String() string {
	lines := make([]string, 0, len(d.list))
	for _, diag := range d.list {
		lines = append(lines, diag.String())
	}
	return strings.Join(lines, "\n")
}

// For returns a reporter filing every error under kind.
func (d *Diagnostics) For(kind Kind) Reporter {
	return Reporter{d: d, kind: kind}
}

// Reporter adapts Diagnostics to consumers that only report errors of one
// kind, such as the scanner and the generic parser.
type Reporter struct {
	d    *Diagnostics
	kind Kind
}

func (r Reporter) Errorf(loc source.Loc, format string, args ...interface{}) {
	r.d.Errorf(r.kind, loc, format, args...)
}
