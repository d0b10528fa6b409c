package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/arr-ai/frozen"

	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/semantic"
)

// WriteDotFile writes the reference graph of m in Graphviz dot syntax.
// Nonterminals are boxes, tokens ellipses, and repeated references are drawn
// dashed. Unreachable nonterminals are greyed out.
func WriteDotFile(w io.Writer, m *semantic.Model) error {
	ctx := m.Ctx
	var buf bytes.Buffer
	buf.WriteString("digraph lmgen {\n\trankdir=LR;\n")

	for _, d := range ctx.Definitions() {
		attrs := "shape=box"
		if d.Name == m.Start {
			attrs += ", peripheries=2"
		}
		if !m.Reachable.Has(d.Name) {
			attrs += ", color=grey, fontcolor=grey"
		}
		fmt.Fprintf(&buf, "\t%s [%s];\n", strconv.Quote(d.Name), attrs)
	}
	for _, t := range ctx.Tokens() {
		if t.Kind == grammar.Ignore {
			continue
		}
		fmt.Fprintf(&buf, "\t%s [shape=ellipse];\n", strconv.Quote(t.Name))
	}

	edges := frozen.NewSet[string]()
	for _, d := range ctx.Definitions() {
		for _, p := range ctx.Alternatives(d.Name) {
			for _, e := range p.Elems {
				target := e.Name
				if e.Kind == grammar.LitElem {
					target = grammar.LiteralName(e.Name)
				}
				edge := fmt.Sprintf("\t%s -> %s", strconv.Quote(d.Name), strconv.Quote(target))
				if e.Kind == grammar.RepeatElem {
					edge += " [style=dashed]"
				}
				edge += ";\n"
				if !edges.Has(edge) {
					edges = edges.With(edge)
					buf.WriteString(edge)
				}
			}
		}
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}
