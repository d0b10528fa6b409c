// Package bootstrap constructs grammars by direct calls rather than by
// parsing text. The grammar of the grammar-definition language itself is
// built this way (see Go and Core); the loader drives the same Builder from
// parse trees of user grammars.
package bootstrap

import (
	"path/filepath"
	goruntime "runtime"

	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/source"
)

type Builder struct {
	ctx  *grammar.Context
	d    *diag.Diagnostics
	loc  *source.Loc
	fold bool
}

func NewBuilder(ctx *grammar.Context, d *diag.Diagnostics) *Builder {
	return &Builder{ctx: ctx, d: d}
}

// At returns a view of b that stamps loc on everything it builds instead of
// the Go call site.
func (b *Builder) At(loc source.Loc) *Builder {
	c := *b
	c.loc = &loc
	return &c
}

// CaseInsensitive returns a view of b whose tokens and ignores match without
// regard to case.
func (b *Builder) CaseInsensitive() *Builder {
	c := *b
	c.fold = true
	return &c
}

func (b *Builder) Context() *grammar.Context {
	return b.ctx
}

// here must be called directly from an exported method.
func (b *Builder) here() source.Loc {
	if b.loc != nil {
		return *b.loc
	}
	if _, file, line, ok := goruntime.Caller(2); ok {
		return source.At(filepath.Base(file), line, 1)
	}
	return source.Loc{}
}

func (b *Builder) ProdRefName(name string) grammar.ProdEl {
	return grammar.ProdEl{Kind: grammar.RefElem, Name: name, Loc: b.here()}
}

func (b *Builder) ProdRefNameRepeat(name string) grammar.ProdEl {
	return grammar.ProdEl{Kind: grammar.RepeatElem, Name: name, Loc: b.here()}
}

func (b *Builder) ProdRefLit(text string) grammar.ProdEl {
	return grammar.ProdEl{Kind: grammar.LitElem, Name: text, Loc: b.here()}
}

// Production builds an alternative from its elements in order.
func (b *Builder) Production(els ...grammar.ProdEl) grammar.Production {
	loc := b.here()
	if len(els) == 0 {
		b.d.Errorf(diag.SemanticError, loc, "production has no elements")
	}
	return grammar.Production{Elems: append([]grammar.ProdEl(nil), els...), Loc: loc, Def: -1}
}

// Definition appends prod to the alternatives of name and returns its id.
func (b *Builder) Definition(name string, prod grammar.Production) int {
	return b.ctx.AddAlternative(name, b.here(), prod)
}

func (b *Builder) Keyword(spelling string) grammar.Token {
	return b.literal(grammar.Keyword, spelling, b.here())
}

func (b *Builder) Symbol(spelling string) grammar.Token {
	return b.literal(grammar.Symbol, spelling, b.here())
}

func (b *Builder) literal(kind grammar.TokenKind, text string, loc source.Loc) grammar.Token {
	if text == "" {
		b.d.Errorf(diag.SemanticError, loc, "empty %s", kind)
		return grammar.Token{}
	}
	t, err := b.ctx.AddToken(grammar.Token{Text: text, Kind: kind, CaseInsensitive: b.fold, Loc: loc})
	if err != nil {
		b.d.Errorf(diag.SemanticError, loc, "%s", err)
	}
	return t
}

// Token declares a named pattern token.
func (b *Builder) Token(name, pattern string) grammar.Token {
	return b.pattern(grammar.Pattern, name, pattern, b.here())
}

// Ignore declares a pattern whose matches are skipped by the scanner.
func (b *Builder) Ignore(pattern string) grammar.Token {
	return b.pattern(grammar.Ignore, "", pattern, b.here())
}

func (b *Builder) pattern(kind grammar.TokenKind, name, pattern string, loc source.Loc) grammar.Token {
	t, err := b.ctx.AddToken(grammar.Token{
		Name:            name,
		Text:            pattern,
		Kind:            kind,
		CaseInsensitive: b.fold,
		Loc:             loc,
	})
	if err != nil {
		b.d.Errorf(diag.SemanticError, loc, "%s", err)
	}
	return t
}
