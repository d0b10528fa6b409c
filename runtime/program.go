// Package runtime executes compiled grammars. A Program holds the tables the
// code generator emits; the Scanner turns text into tokens using the
// program's token table and the Parser recognises the token stream against
// its productions.
package runtime

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the table format produced by this version of the code
// generator.
const FormatVersion = "1.0.0"

// supportedVersions lists the table formats this runtime can execute.
const supportedVersions = "^1.0.0"

type TokenKind uint8

const (
	KeywordToken TokenKind = iota
	SymbolToken
	PatternToken
	IgnoreToken
)

// IsLiteral reports whether the token's Pattern is a fixed spelling.
func (k TokenKind) IsLiteral() bool {
	return k == KeywordToken || k == SymbolToken
}

type TokenDef struct {
	Name string
	// Pattern is the spelling of literal tokens or the regular expression of
	// the others.
	Pattern         string
	Kind            TokenKind
	CaseInsensitive bool
}

// Op tells the parser how to match one production element.
type Op uint8

const (
	OpToken       Op = iota // one token
	OpCall                  // one nonterminal
	OpRepeatToken           // zero or more tokens
	OpRepeatCall            // zero or more nonterminals
)

func (o Op) String() string {
	switch o {
	case OpToken:
		return "OpToken"
	case OpCall:
		return "OpCall"
	case OpRepeatToken:
		return "OpRepeatToken"
	case OpRepeatCall:
		return "OpRepeatCall"
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsCall reports whether Sym indexes Nonterms rather than Tokens.
func (o Op) IsCall() bool {
	return o == OpCall || o == OpRepeatCall
}

func (o Op) IsRepeat() bool {
	return o == OpRepeatToken || o == OpRepeatCall
}

type Elem struct {
	Op  Op
	Sym int
}

type Prod struct {
	Nonterm int
	Elems   []Elem
	Action  string
}

type Nonterm struct {
	Name  string
	Prods []int
}

type BranchPoint struct {
	Nonterm int
	Prods   []int
	Prefix  int
}

// Program is a compiled grammar.
type Program struct {
	Version      string
	Start        int
	Logging      bool
	Tokens       []TokenDef
	Nonterms     []Nonterm
	Prods        []Prod
	BranchPoints []BranchPoint
}

// Check verifies that p can be executed by this runtime.
func (p *Program) Check() error {
	v, err := semver.NewVersion(p.Version)
	if err != nil {
		return fmt.Errorf("program format version %q: %w", p.Version, err)
	}
	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("program format version %s is not supported (want %s)", v, supportedVersions)
	}

	if p.Start < 0 || p.Start >= len(p.Nonterms) {
		return fmt.Errorf("start nonterminal %d out of range", p.Start)
	}
	for i, nt := range p.Nonterms {
		if len(nt.Prods) == 0 {
			return fmt.Errorf("nonterminal %s has no productions", nt.Name)
		}
		for _, id := range nt.Prods {
			if id < 0 || id >= len(p.Prods) || p.Prods[id].Nonterm != i {
				return fmt.Errorf("nonterminal %s: bad production %d", nt.Name, id)
			}
		}
	}
	for id, prod := range p.Prods {
		for _, e := range prod.Elems {
			limit := len(p.Tokens)
			if e.Op.IsCall() {
				limit = len(p.Nonterms)
			}
			if e.Sym < 0 || e.Sym >= limit {
				return fmt.Errorf("production %d: %s symbol %d out of range", id, e.Op, e.Sym)
			}
		}
	}
	return nil
}

func (p *Program) symbolName(e Elem) string {
	if e.Op.IsCall() {
		return p.Nonterms[e.Sym].Name
	}
	return p.Tokens[e.Sym].Name
}
