// Package grammar holds the grammar context: the single store of every token,
// definition, production and production element built during one compilation.
package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arr-ai/lmgen/source"
)

type TokenKind int

const (
	Keyword TokenKind = iota
	Symbol
	Pattern
	Ignore
)

func (k TokenKind) String() string {
	switch k {
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case Pattern:
		return "token"
	case Ignore:
		return "ignore"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsLiteral reports whether tokens of this kind match a fixed spelling.
func (k TokenKind) IsLiteral() bool {
	return k == Keyword || k == Symbol
}

// Token is a terminal symbol. Literal tokens (keywords and symbols) are
// identified by their spelling, patterns by their name.
type Token struct {
	Name            string
	Text            string
	Kind            TokenKind
	CaseInsensitive bool
	Loc             source.Loc
}

func (t Token) String() string {
	flags := ""
	if t.CaseInsensitive {
		flags = "i"
	}
	switch t.Kind {
	case Pattern:
		return fmt.Sprintf("token %s /%s/%s", t.Name, t.Text, flags)
	case Ignore:
		return fmt.Sprintf("ignore /%s/%s", t.Text, flags)
	}
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

// LiteralName is the name under which a literal token is registered.
func LiteralName(text string) string {
	q := strconv.Quote(text)
	return "'" + strings.ReplaceAll(q[1:len(q)-1], "'", `\'`) + "'"
}

type ElemKind int

const (
	RefElem ElemKind = iota
	RepeatElem
	LitElem
)

// ProdEl is one slot of a production body.
type ProdEl struct {
	Kind ElemKind
	// Name is the referenced nonterminal or token, or the literal text.
	Name string
	Loc  source.Loc
}

func (e ProdEl) String() string {
	switch e.Kind {
	case RepeatElem:
		return e.Name + "*"
	case LitElem:
		return LiteralName(e.Name)
	}
	return e.Name
}

// Equal compares elements structurally, ignoring locations.
func (e ProdEl) Equal(f ProdEl) bool {
	return e.Kind == f.Kind && e.Name == f.Name
}

// Production is one ordered alternative of a definition.
type Production struct {
	Elems  []ProdEl
	Action string
	Loc    source.Loc
	// Def is the index of the owning definition, or -1 before the production
	// has been appended to one.
	Def int
}

func (p Production) String() string {
	parts := make([]string, 0, len(p.Elems))
	for _, e := range p.Elems {
		parts = append(parts, e.String())
	}
	s := "[" + strings.Join(parts, " ") + "]"
	if p.Action != "" {
		s += " :" + p.Action
	}
	return s
}

// Definition binds a nonterminal name to its alternatives, held as
// production ids in the order they were added.
type Definition struct {
	Name string
	Loc  source.Loc
	Alts []int
}

// BranchPoint marks alternatives of one definition that share a common
// leading run of elements.
type BranchPoint struct {
	Alts   []int
	Prefix int
}

type ClassConflictError struct {
	Text      string
	Existing  TokenKind
	Requested TokenKind
}

func (e ClassConflictError) Error() string {
	return fmt.Sprintf("%s already registered as a %s, not a %s", LiteralName(e.Text), e.Existing, e.Requested)
}

type TokenRedefinedError struct {
	Name     string
	Previous source.Loc
}

func (e TokenRedefinedError) Error() string {
	return fmt.Sprintf("token %s redefined (previously defined at %s)", e.Name, e.Previous)
}
