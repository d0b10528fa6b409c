package semantic

import (
	"fmt"
	"strings"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/lmgen/grammar"
)

/*
A branch point is a set of alternatives of one definition that begin with the
same element. The parser has to try each of them in turn over the same input,
so the grammar author may want to factor the shared prefix out:

	def prod [ '[' prod_el* ']' ]
	         | [ '[' prod_el* ']' ':' id ]

has one branch point with a common prefix of three elements.
*/

func (a *analyzer) findBranchPoints() {
	for _, d := range a.ctx.Definitions() {
		bps := branchPoints(a.ctx, d)
		if len(bps) == 0 {
			continue
		}
		a.ctx.SetBranchPoints(d.Name, bps)
		a.m.BranchPoints[d.Name] = bps
		for _, bp := range bps {
			a.m.Warnings = append(a.m.Warnings, Error{
				Loc:  d.Loc,
				Kind: BranchPointFound,
				Msg:  describe(d, bp),
			})
		}
	}
}

func branchPoints(ctx *grammar.Context, d grammar.Definition) []grammar.BranchPoint {
	grouped := frozen.NewSet[int]()
	var out []grammar.BranchPoint
	for i, id := range d.Alts {
		if grouped.Has(id) {
			continue
		}
		first := ctx.Production(id)
		if len(first.Elems) == 0 {
			continue
		}
		bp := grammar.BranchPoint{Alts: []int{id}, Prefix: len(first.Elems)}
		for _, other := range d.Alts[i+1:] {
			p := ctx.Production(other)
			if n := commonPrefix(first.Elems, p.Elems); n > 0 {
				bp.Alts = append(bp.Alts, other)
				if n < bp.Prefix {
					bp.Prefix = n
				}
				grouped = grouped.With(other)
			}
		}
		if len(bp.Alts) > 1 {
			out = append(out, bp)
		}
	}
	return out
}

func commonPrefix(a, b []grammar.ProdEl) int {
	n := 0
	for n < len(a) && n < len(b) && a[n].Equal(b[n]) {
		n++
	}
	return n
}

func describe(d grammar.Definition, bp grammar.BranchPoint) string {
	alts := make([]string, 0, len(bp.Alts))
	for _, id := range bp.Alts {
		for i, alt := range d.Alts {
			if alt == id {
				alts = append(alts, fmt.Sprint(i+1))
			}
		}
	}
	return fmt.Sprintf("branch point in %s: alternatives %s share a prefix of %d element(s)",
		d.Name, strings.Join(alts, ", "), bp.Prefix)
}
