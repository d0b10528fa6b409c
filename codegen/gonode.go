package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arr-ai/lmgen/runtime"
)

const (
	noScope int = iota
	bracesScope
	squigglyScope
	fieldScope
)

// goNode renders a Go expression built from nested composite literals.
type goNode struct {
	name     string
	children []goNode
	scope    int
}

func (g *goNode) String() string {
	x := map[int]struct {
		open  string
		close string
	}{
		noScope:       {"", ""},
		fieldScope:    {": ", ""},
		bracesScope:   {"(", ")"},
		squigglyScope: {"{\n", ",\n}"},
	}[g.scope]
	children := make([]string, 0, len(g.children))
	for _, c := range g.children {
		children = append(children, c.String())
	}
	if g.scope == squigglyScope && len(children) == 0 {
		return g.name + "{}"
	}
	return strings.Join([]string{g.name, x.open, strings.Join(children, ",\n"), x.close}, "")
}

func (g *goNode) Add(n goNode) {
	g.children = append(g.children, n)
}

func stringNode(fmtString string, args ...interface{}) goNode {
	return goNode{name: fmt.Sprintf(fmtString, args...)}
}

func field(name string, value goNode) goNode {
	return goNode{name: name, children: []goNode{value}, scope: fieldScope}
}

func intsNode(ints []int) goNode {
	node := goNode{name: "[]int", scope: squigglyScope}
	for _, i := range ints {
		node.Add(stringNode("%d", i))
	}
	return node
}

var tokenKindNames = map[runtime.TokenKind]string{
	runtime.KeywordToken: "runtime.KeywordToken",
	runtime.SymbolToken:  "runtime.SymbolToken",
	runtime.PatternToken: "runtime.PatternToken",
	runtime.IgnoreToken:  "runtime.IgnoreToken",
}

func tokenNode(t runtime.TokenDef) goNode {
	node := goNode{scope: squigglyScope}
	node.Add(field("Name", stringNode(strconv.Quote(t.Name))))
	node.Add(field("Pattern", stringNode(strconv.Quote(t.Pattern))))
	node.Add(field("Kind", stringNode(tokenKindNames[t.Kind])))
	if t.CaseInsensitive {
		node.Add(field("CaseInsensitive", stringNode("true")))
	}
	return node
}

func prodNode(p runtime.Prod) goNode {
	node := goNode{scope: squigglyScope}
	node.Add(field("Nonterm", stringNode("%d", p.Nonterm)))
	elems := goNode{name: "[]runtime.Elem", scope: squigglyScope}
	for _, e := range p.Elems {
		elems.Add(stringNode("{Op: runtime.%s, Sym: %d}", e.Op, e.Sym))
	}
	node.Add(field("Elems", elems))
	if p.Action != "" {
		node.Add(field("Action", stringNode(strconv.Quote(p.Action))))
	}
	return node
}

// programNode renders p as a runtime.Program composite literal.
func programNode(p *runtime.Program) goNode {
	root := goNode{name: "runtime.Program", scope: squigglyScope}
	root.Add(field("Version", stringNode(strconv.Quote(p.Version))))
	root.Add(field("Start", stringNode("%d", p.Start)))
	if p.Logging {
		root.Add(field("Logging", stringNode("true")))
	}

	tokens := goNode{name: "[]runtime.TokenDef", scope: squigglyScope}
	for _, t := range p.Tokens {
		tokens.Add(tokenNode(t))
	}
	root.Add(field("Tokens", tokens))

	nonterms := goNode{name: "[]runtime.Nonterm", scope: squigglyScope}
	for _, nt := range p.Nonterms {
		node := goNode{scope: squigglyScope}
		node.Add(field("Name", stringNode(strconv.Quote(nt.Name))))
		node.Add(field("Prods", intsNode(nt.Prods)))
		nonterms.Add(node)
	}
	root.Add(field("Nonterms", nonterms))

	prods := goNode{name: "[]runtime.Prod", scope: squigglyScope}
	for _, prod := range p.Prods {
		prods.Add(prodNode(prod))
	}
	root.Add(field("Prods", prods))

	if len(p.BranchPoints) > 0 {
		bps := goNode{name: "[]runtime.BranchPoint", scope: squigglyScope}
		for _, bp := range p.BranchPoints {
			node := goNode{scope: squigglyScope}
			node.Add(field("Nonterm", stringNode("%d", bp.Nonterm)))
			node.Add(field("Prods", intsNode(bp.Prods)))
			node.Add(field("Prefix", stringNode("%d", bp.Prefix)))
			bps.Add(node)
		}
		root.Add(field("BranchPoints", bps))
	}
	return root
}
