package codegen

import (
	"fmt"
	"strings"

	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/semantic"
)

// Statistics summarises a grammar for the -s flag.
type Statistics struct {
	Keywords     int
	Symbols      int
	Patterns     int
	Ignores      int
	Definitions  int
	Productions  int
	Elements     int
	Nullable     int
	Unreachable  int
	BranchPoints int
}

func Stats(m *semantic.Model) Statistics {
	var s Statistics
	for _, t := range m.Ctx.Tokens() {
		switch t.Kind {
		case grammar.Keyword:
			s.Keywords++
		case grammar.Symbol:
			s.Symbols++
		case grammar.Pattern:
			s.Patterns++
		case grammar.Ignore:
			s.Ignores++
		}
	}
	defs := m.Ctx.Definitions()
	s.Definitions = len(defs)
	for _, p := range m.Ctx.Productions() {
		s.Productions++
		s.Elements += len(p.Elems)
	}
	s.Nullable = m.Nullable.Count()
	for _, d := range defs {
		if !m.Reachable.Has(d.Name) {
			s.Unreachable++
		}
		s.BranchPoints += len(m.BranchPoints[d.Name])
	}
	return s
}

func (s Statistics) String() string {
	var sb strings.Builder
	for _, row := range []struct {
		name string
		n    int
	}{
		{"keywords", s.Keywords},
		{"symbols", s.Symbols},
		{"tokens", s.Patterns},
		{"ignores", s.Ignores},
		{"nonterminals", s.Definitions},
		{"productions", s.Productions},
		{"elements", s.Elements},
		{"nullable", s.Nullable},
		{"unreachable", s.Unreachable},
		{"branch points", s.BranchPoints},
	} {
		fmt.Fprintf(&sb, "%-14s %d\n", row.name+":", row.n)
	}
	return sb.String()
}
