package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arr-ai/lmgen/gotree"
	"github.com/arr-ai/lmgen/source"
)

// ErrTooComplex is returned when a parse exceeds its step budget.
var ErrTooComplex = errors.New("parse abandoned: step budget exhausted")

// EndOfInput stands in for a token name when the input ran out.
const EndOfInput = "end of input"

// ParseError describes the furthest point the parser reached without finding
// a way forward.
type ParseError struct {
	Loc      source.Loc
	Found    string
	Expected []string
	// Within lists the nonterminals that were being recognised at Loc,
	// outermost first.
	Within []string
}

func (e ParseError) Error() string {
	msg := "unexpected " + e.Found
	switch len(e.Expected) {
	case 0:
	case 1:
		msg += ", expected " + e.Expected[0]
	default:
		msg += ", expected one of " + strings.Join(e.Expected, " ")
	}
	return msg
}

// Tree shows the error nested under the rules active at its location.
func (e ParseError) Tree() gotree.Tree {
	root := gotree.New(fmt.Sprintf("parse failed at %s", e.Loc))
	parent := root
	for _, name := range e.Within {
		parent = parent.Add("rule(" + name + ")")
	}
	parent.Add(e.Error())
	return root
}

// ScanError is returned by a parse whose input had lexical errors.
type ScanError struct {
	File  string
	Count int
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %d lexical error(s)", e.File, e.Count)
}
