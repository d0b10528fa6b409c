// Package codegen turns an analysed grammar into its executable artifact:
// runtime tables, the Go source embedding them, or a Graphviz graph.
package codegen

import (
	"fmt"

	"github.com/arr-ai/lmgen/errors"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/semantic"
)

type Options struct {
	// Package is the package clause of emitted Go source.
	Package string
	// CommandLine is recorded in the generated file's header.
	CommandLine string
	// Logging makes the generated parser log its steps.
	Logging bool
}

func (o Options) pkg() string {
	if o.Package == "" {
		return "grammar"
	}
	return o.Package
}

var tokenKinds = map[grammar.TokenKind]runtime.TokenKind{
	grammar.Keyword: runtime.KeywordToken,
	grammar.Symbol:  runtime.SymbolToken,
	grammar.Pattern: runtime.PatternToken,
	grammar.Ignore:  runtime.IgnoreToken,
}

// Lower builds the runtime tables for m. Tokens, nonterminals and productions
// keep their registration order, so the same grammar always lowers to the
// same tables. m must have passed analysis without errors.
func Lower(m *semantic.Model, opts Options) *runtime.Program {
	ctx := m.Ctx
	p := &runtime.Program{Version: runtime.FormatVersion, Logging: opts.Logging}

	tokens := map[string]int{}
	for i, t := range ctx.Tokens() {
		tokens[t.Name] = i
		p.Tokens = append(p.Tokens, runtime.TokenDef{
			Name:            t.Name,
			Pattern:         t.Text,
			Kind:            tokenKinds[t.Kind],
			CaseInsensitive: t.CaseInsensitive,
		})
	}

	for _, d := range ctx.Definitions() {
		p.Nonterms = append(p.Nonterms, runtime.Nonterm{Name: d.Name, Prods: d.Alts})
	}
	start, has := ctx.DefinitionIndex(m.Start)
	if !has {
		panic(fmt.Errorf("%w: start %s vanished after analysis", errors.Inconceivable, m.Start))
	}
	p.Start = start

	for _, prod := range ctx.Productions() {
		rp := runtime.Prod{Nonterm: prod.Def, Action: prod.Action}
		for _, e := range prod.Elems {
			rp.Elems = append(rp.Elems, lowerElem(ctx, tokens, e))
		}
		p.Prods = append(p.Prods, rp)
	}

	for _, d := range ctx.Definitions() {
		nt, _ := ctx.DefinitionIndex(d.Name)
		for _, bp := range m.BranchPoints[d.Name] {
			p.BranchPoints = append(p.BranchPoints, runtime.BranchPoint{
				Nonterm: nt,
				Prods:   append([]int(nil), bp.Alts...),
				Prefix:  bp.Prefix,
			})
		}
	}
	return p
}

func lowerElem(ctx *grammar.Context, tokens map[string]int, e grammar.ProdEl) runtime.Elem {
	if e.Kind == grammar.LitElem {
		t, has := ctx.Literal(e.Name)
		if !has {
			panic(fmt.Errorf("%w: undeclared literal %s", errors.Inconceivable, grammar.LiteralName(e.Name)))
		}
		return runtime.Elem{Op: runtime.OpToken, Sym: tokens[t.Name]}
	}
	repeat := e.Kind == grammar.RepeatElem
	if d, has := ctx.DefinitionIndex(e.Name); has {
		if repeat {
			return runtime.Elem{Op: runtime.OpRepeatCall, Sym: d}
		}
		return runtime.Elem{Op: runtime.OpCall, Sym: d}
	}
	if t, has := tokens[e.Name]; has {
		if repeat {
			return runtime.Elem{Op: runtime.OpRepeatToken, Sym: t}
		}
		return runtime.Elem{Op: runtime.OpToken, Sym: t}
	}
	panic(fmt.Errorf("%w: unresolved reference %s", errors.Inconceivable, e.Name))
}
