// Package semantic checks a frozen grammar context for reference, structure
// and cycle errors before code generation.
package semantic

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/lmgen/grammar"
)

const DefaultStart = "start"

type Options struct {
	// Start names the start definition. Empty means DefaultStart.
	Start string
	// BranchPoints enables branch point detection and reporting.
	BranchPoints bool
}

// Model is the analysed grammar handed to the code generator.
type Model struct {
	Ctx   *grammar.Context
	Start string

	Nullable  frozen.Set[string]
	Reachable frozen.Set[string]
	// BranchPoints is filled only when Options.BranchPoints is set.
	BranchPoints map[string][]grammar.BranchPoint
	Warnings     Errors
}

func (m *Model) IsNullable(name string) bool {
	return m.Nullable.Has(name)
}

var errNotFrozen = errors.New("semantic analysis needs a frozen grammar context")

// Analyze checks ctx. The model is returned even when there are errors so
// that warnings and statistics remain available; the error, if any, is an
// Errors value holding every problem found.
func Analyze(ctx *grammar.Context, opts Options) (*Model, error) {
	if !ctx.Frozen() {
		return nil, errNotFrozen
	}
	if opts.Start == "" {
		opts.Start = DefaultStart
	}
	a := analyzer{ctx: ctx, m: &Model{
		Ctx:          ctx,
		Start:        opts.Start,
		Reachable:    frozen.NewSet[string](),
		BranchPoints: map[string][]grammar.BranchPoint{},
	}}

	a.checkTokens()
	a.checkReferences()
	a.checkStart()
	a.m.Nullable = nullable(ctx)
	a.checkRecursion()
	a.checkRepeats()
	a.checkReachable()
	if opts.BranchPoints {
		a.findBranchPoints()
	}

	if len(a.errs) > 0 {
		return a.m, a.errs
	}
	return a.m, nil
}

type analyzer struct {
	ctx  *grammar.Context
	m    *Model
	errs Errors
}

func (a *analyzer) errorf(e grammar.ProdEl, kind Kind, format string, args ...interface{}) {
	a.errs = append(a.errs, Error{Loc: e.Loc, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (a *analyzer) checkTokens() {
	for _, t := range a.ctx.Tokens() {
		if t.Kind.IsLiteral() {
			continue
		}
		expr := t.Text
		if t.CaseInsensitive {
			expr = "(?i:" + expr + ")"
		}
		if _, err := regexp.Compile(expr); err != nil {
			a.errs = append(a.errs, Error{
				Loc:  t.Loc,
				Kind: InvalidPattern,
				Msg:  fmt.Sprintf("%s: invalid regular expression /%s/: %s", t.Name, t.Text, err),
			})
		}
	}
}

// resolves reports whether name refers to a definition or a pattern token.
func (a *analyzer) resolves(name string) bool {
	if _, has := a.ctx.Definition(name); has {
		return true
	}
	t, has := a.ctx.Token(name)
	return has && t.Kind == grammar.Pattern
}

func (a *analyzer) checkReferences() {
	for _, d := range a.ctx.Definitions() {
		if t, has := a.ctx.Token(d.Name); has {
			a.errs = append(a.errs, Error{
				Loc:  d.Loc,
				Kind: AmbiguousName,
				Msg:  fmt.Sprintf("%s is defined as both a token (at %s) and a nonterminal", d.Name, t.Loc),
			})
		}
	}
	for _, p := range a.ctx.Productions() {
		for _, e := range p.Elems {
			switch e.Kind {
			case grammar.LitElem:
				if _, has := a.ctx.Literal(e.Name); !has {
					a.errorf(e, Unresolved, "literal %s is not declared as a keyword or symbol", grammar.LiteralName(e.Name))
				}
			default:
				if !a.resolves(e.Name) {
					a.errorf(e, Unresolved, "%s is neither a nonterminal nor a token", e.Name)
				}
			}
		}
	}
}

func (a *analyzer) checkStart() {
	if _, has := a.ctx.Definition(a.m.Start); !has {
		a.errs = append(a.errs, Error{
			Kind: MissingStart,
			Msg:  fmt.Sprintf("start nonterminal %s is not defined", a.m.Start),
		})
	}
}

func (a *analyzer) checkRepeats() {
	for _, p := range a.ctx.Productions() {
		for _, e := range p.Elems {
			if e.Kind == grammar.RepeatElem && a.m.Nullable.Has(e.Name) {
				a.errorf(e, NullableRepeat, "%s* repeats a nonterminal that can match nothing", e.Name)
			}
		}
	}
}

// references calls f for each nonterminal referenced by the definition.
func (a *analyzer) references(name string, f func(string)) {
	for _, p := range a.ctx.Alternatives(name) {
		for _, e := range p.Elems {
			if e.Kind != grammar.LitElem {
				if _, has := a.ctx.Definition(e.Name); has {
					f(e.Name)
				}
			}
		}
	}
}

func (a *analyzer) checkReachable() {
	if _, has := a.ctx.Definition(a.m.Start); !has {
		return
	}
	reached := frozen.NewSet(a.m.Start)
	queue := []string{a.m.Start}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		a.references(name, func(ref string) {
			if !reached.Has(ref) {
				reached = reached.With(ref)
				queue = append(queue, ref)
			}
		})
	}
	a.m.Reachable = reached
	for _, d := range a.ctx.Definitions() {
		if !reached.Has(d.Name) {
			a.m.Warnings = append(a.m.Warnings, Error{
				Loc:  d.Loc,
				Kind: Unreachable,
				Msg:  fmt.Sprintf("%s is not reachable from %s", d.Name, a.m.Start),
			})
		}
	}
}
