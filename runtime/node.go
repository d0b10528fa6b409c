package runtime

import (
	"fmt"
	"strings"

	"github.com/arr-ai/lmgen/gotree"
	"github.com/arr-ai/lmgen/source"
)

type NodeKind uint8

const (
	NonterminalNode NodeKind = iota
	TokenNode
	RepeatNode
)

// Node is one vertex of a parse tree.
type Node struct {
	Name string
	Kind NodeKind
	// Prod is the production a nonterminal node was recognised with.
	Prod   int
	Action string
	// Children are the matched elements of a nonterminal or the items of a
	// repetition.
	Children []*Node
	// Text is the lexeme of a token node.
	Text string
	Loc  source.Loc
}

// Child returns the i'th child, or nil if there is none.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Leaves returns the token nodes under n in input order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == TokenNode {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *Node) label() string {
	switch n.Kind {
	case TokenNode:
		return fmt.Sprintf("%s %q", n.Name, n.Text)
	case RepeatNode:
		return fmt.Sprintf("%s* (%d)", n.Name, len(n.Children))
	}
	if n.Action != "" {
		return n.Name + " :" + n.Action
	}
	return n.Name
}

// Tree renders n and its descendants as a gotree.
func (n *Node) Tree() gotree.Tree {
	t := gotree.New(n.label())
	for _, c := range n.Children {
		t.AddTree(c.Tree())
	}
	return t
}

func (n *Node) String() string {
	return strings.TrimSuffix(n.Tree().Print(), "\n")
}
