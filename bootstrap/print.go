package bootstrap

import (
	"fmt"
	"io"

	"github.com/arr-ai/lmgen/gotree"
	"github.com/arr-ai/lmgen/runtime"
)

// PrintParseTree writes n as an indented tree. Repetitions are flattened into
// their items and single-child nonterminals are shown on one line, so a
// statement list reads like the text it came from.
func PrintParseTree(w io.Writer, n *runtime.Node) error {
	_, err := io.WriteString(w, parseTree(n).Print())
	return err
}

func parseTree(n *runtime.Node) gotree.Tree {
	label := n.Name
	for n.Kind == runtime.NonterminalNode && len(n.Children) == 1 && n.Children[0].Kind == runtime.NonterminalNode {
		n = n.Children[0]
		label += " > " + n.Name
	}
	if n.Kind == runtime.TokenNode {
		return gotree.New(fmt.Sprintf("%s %q", n.Name, n.Text))
	}
	t := gotree.New(label)
	for _, c := range n.Children {
		if c.Kind == runtime.RepeatNode {
			for _, item := range c.Children {
				t.AddTree(parseTree(item))
			}
			continue
		}
		t.AddTree(parseTree(c))
	}
	return t
}
