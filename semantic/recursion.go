package semantic

import (
	"fmt"
	"strings"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/lmgen/grammar"
)

/*
A top-down parser loops forever on a rule that can reach itself without first
consuming a token. Such a path follows, from each alternative, every
nonterminal that appears before the first element that must match something:

	a -> [a 'x']
	a -> [b* a]
	a -> [b a]   where b can match nothing

Tokens and literals never match the empty string, repetitions always can.
*/

// nullable returns the definitions that can match the empty token sequence.
func nullable(ctx *grammar.Context) frozen.Set[string] {
	result := frozen.NewSet[string]()
	for changed := true; changed; {
		changed = false
		for _, d := range ctx.Definitions() {
			if result.Has(d.Name) {
				continue
			}
			for _, p := range ctx.Alternatives(d.Name) {
				if prefixNullable(p.Elems, result) {
					result = result.With(d.Name)
					changed = true
					break
				}
			}
		}
	}
	return result
}

func prefixNullable(elems []grammar.ProdEl, nullable frozen.Set[string]) bool {
	for _, e := range elems {
		if !elemNullable(e, nullable) {
			return false
		}
	}
	return true
}

func elemNullable(e grammar.ProdEl, nullable frozen.Set[string]) bool {
	switch e.Kind {
	case grammar.RepeatElem:
		return true
	case grammar.RefElem:
		return nullable.Has(e.Name)
	}
	return false
}

// dangerTerms returns the nonterminals the definition may enter without
// having consumed input.
func dangerTerms(ctx *grammar.Context, name string, nullable frozen.Set[string]) []string {
	seen := frozen.NewSet[string]()
	var out []string
	for _, p := range ctx.Alternatives(name) {
		for _, e := range p.Elems {
			if e.Kind != grammar.LitElem {
				if _, has := ctx.Definition(e.Name); has && !seen.Has(e.Name) {
					seen = seen.With(e.Name)
					out = append(out, e.Name)
				}
			}
			if !elemNullable(e, nullable) {
				break
			}
		}
	}
	return out
}

func (a *analyzer) checkRecursion() {
	dangers := map[string][]string{}
	for _, d := range a.ctx.Definitions() {
		dangers[d.Name] = dangerTerms(a.ctx, d.Name, a.m.Nullable)
	}

	reported := frozen.NewSet[string]()
	done := frozen.NewSet[string]()
	var walk func(name string, path []string, onPath frozen.Set[string])
	walk = func(name string, path []string, onPath frozen.Set[string]) {
		path = append(path[:len(path):len(path)], name)
		onPath = onPath.With(name)
		for _, next := range dangers[name] {
			if onPath.Has(next) {
				cycle := cycleFrom(path, next)
				if key := canonical(cycle); !reported.Has(key) {
					reported = reported.With(key)
					a.reportCycle(cycle)
				}
				continue
			}
			if !done.Has(next) {
				walk(next, path, onPath)
			}
		}
		done = done.With(name)
	}
	for _, d := range a.ctx.Definitions() {
		if !done.Has(d.Name) {
			walk(d.Name, nil, frozen.NewSet[string]())
		}
	}
}

// cycleFrom cuts the cycle starting at name out of path.
func cycleFrom(path []string, name string) []string {
	for i, p := range path {
		if p == name {
			return append([]string(nil), path[i:]...)
		}
	}
	return nil
}

// canonical identifies a cycle regardless of where it was entered.
func canonical(cycle []string) string {
	best := 0
	for i := range cycle {
		if cycle[i] < cycle[best] {
			best = i
		}
	}
	rotated := append(append([]string(nil), cycle[best:]...), cycle[:best]...)
	return strings.Join(rotated, " ")
}

func (a *analyzer) reportCycle(cycle []string) {
	d, _ := a.ctx.Definition(cycle[0])
	route := strings.Join(append(cycle, cycle[0]), " > ")
	a.errs = append(a.errs, Error{
		Loc:  d.Loc,
		Kind: LeftRecursion,
		Msg:  fmt.Sprintf("left recursion: %s", route),
	})
}
