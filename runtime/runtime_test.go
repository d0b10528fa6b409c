package runtime

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arr-ai/lmgen/source"
)

type recorder struct {
	msgs []string
}

func (r *recorder) Errorf(loc source.Loc, format string, args ...interface{}) {
	r.msgs = append(r.msgs, loc.String()+": "+fmt.Sprintf(format, args...))
}

type collect struct {
	toks []Token
	end  source.Loc
}

func (c *collect) Token(tok Token)    { c.toks = append(c.toks, tok) }
func (c *collect) EOF(loc source.Loc) { c.end = loc }

const (
	tDef = iota
	tOpen
	tClose
	tID
	tWS
	tEnd
)

// start -> item*
// item  -> 'def' id | '[' id* ']'
// tail  -> id* id 'end'
func testProgram() *Program {
	return &Program{
		Version: FormatVersion,
		Tokens: []TokenDef{
			{Name: "'def'", Pattern: "def", Kind: KeywordToken},
			{Name: "'['", Pattern: "[", Kind: SymbolToken},
			{Name: "']'", Pattern: "]", Kind: SymbolToken},
			{Name: "id", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Kind: PatternToken},
			{Name: "%ignore1", Pattern: `\s+`, Kind: IgnoreToken},
			{Name: "'END'", Pattern: "end", Kind: KeywordToken, CaseInsensitive: true},
		},
		Nonterms: []Nonterm{
			{Name: "start", Prods: []int{0}},
			{Name: "item", Prods: []int{1, 2}},
			{Name: "tail", Prods: []int{3}},
		},
		Prods: []Prod{
			{Nonterm: 0, Elems: []Elem{{OpRepeatCall, 1}}},
			{Nonterm: 1, Elems: []Elem{{OpToken, tDef}, {OpToken, tID}}, Action: "decl"},
			{Nonterm: 1, Elems: []Elem{{OpToken, tOpen}, {OpRepeatToken, tID}, {OpToken, tClose}}},
			{Nonterm: 2, Elems: []Elem{{OpRepeatToken, tID}, {OpToken, tID}, {OpToken, tEnd}}},
		},
	}
}

func scan(t *testing.T, src string) (*collect, *recorder, *Scanner) {
	t.Helper()
	lx, err := NewLexer(testProgram())
	require.NoError(t, err)
	sink, rep := &collect{}, &recorder{}
	sc := NewScanner(lx, "in", rep, sink)
	require.NoError(t, sc.Scan(strings.NewReader(src)))
	sc.EOF()
	return sink, rep, sc
}

func types(toks []Token) []int {
	out := make([]int, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Type)
	}
	return out
}

func TestScannerLongestMatch(t *testing.T) {
	t.Parallel()

	sink, rep, sc := scan(t, "define def\n  x END")
	assert.Empty(t, rep.msgs)
	assert.Zero(t, sc.Errors())
	assert.Equal(t, []int{tID, tDef, tID, tEnd}, types(sink.toks))
	assert.Equal(t, "define", sink.toks[0].Text)
	assert.Equal(t, source.At("in", 1, 8), sink.toks[1].Loc)
	assert.Equal(t, source.At("in", 2, 3), sink.toks[2].Loc)
	assert.Equal(t, source.At("in", 2, 8), sink.end)
}

func TestScannerResync(t *testing.T) {
	t.Parallel()

	sink, rep, sc := scan(t, "def $$% x ]")
	assert.Equal(t, 1, sc.Errors())
	assert.Equal(t, []string{`in:1:5: unexpected input "$$%"`}, rep.msgs)
	assert.Equal(t, []int{tDef, tID, tClose}, types(sink.toks))
}

func TestNewLexerBadPattern(t *testing.T) {
	t.Parallel()

	p := testProgram()
	p.Tokens[tID].Pattern = "[a-"
	_, err := NewLexer(p)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	t.Parallel()

	rep := &recorder{}
	tree, err := ParseString(testProgram(), "in", "def a [ b c ] []", rep)
	require.NoError(t, err)
	assert.Empty(t, rep.msgs)

	assert.Equal(t, "start", tree.Name)
	items := tree.Child(0)
	require.NotNil(t, items)
	assert.Equal(t, RepeatNode, items.Kind)
	require.Len(t, items.Children, 3)
	assert.Equal(t, "decl", items.Children[0].Action)
	assert.Equal(t, 2, items.Children[1].Prod)
	assert.Len(t, items.Children[1].Child(1).Children, 2)
	assert.Empty(t, items.Children[2].Child(1).Children)

	var texts []string
	for _, leaf := range tree.Leaves() {
		texts = append(texts, leaf.Text)
	}
	assert.Equal(t, []string{"def", "a", "[", "b", "c", "]", "[", "]"}, texts)
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	tree, err := ParseString(testProgram(), "in", "  ", nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Child(0).Children)
}

func TestParseBacktracksIntoRepeat(t *testing.T) {
	t.Parallel()

	p := testProgram()
	p.Start = 2
	tree, err := ParseString(p, "in", "a b c end", nil)
	require.NoError(t, err)
	assert.Len(t, tree.Child(0).Children, 2)
	assert.Equal(t, "c", tree.Child(1).Text)
}

func TestParseError(t *testing.T) {
	t.Parallel()

	rep := &recorder{}
	_, err := ParseString(testProgram(), "in", "def a def [", rep)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, source.At("in", 1, 11), pe.Loc)
	assert.Equal(t, "'['", pe.Found)
	assert.Equal(t, []string{"id"}, pe.Expected)
	assert.Equal(t, []string{"start", "item"}, pe.Within)
	assert.Equal(t, []string{"in:1:11: unexpected '[', expected id"}, rep.msgs)
	assert.Contains(t, pe.Tree().Print(), "rule(item)")
}

func TestParseErrorAtEnd(t *testing.T) {
	t.Parallel()

	_, err := ParseString(testProgram(), "in", "[ a", nil)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, EndOfInput, pe.Found)
	assert.Equal(t, []string{"']'", "id"}, pe.Expected)
}

func TestParseLexicalError(t *testing.T) {
	t.Parallel()

	rep := &recorder{}
	_, err := ParseString(testProgram(), "in", "def a $", rep)
	assert.Equal(t, ScanError{File: "in", Count: 1}, err)
	assert.Len(t, rep.msgs, 1)
}

func TestParseLeftRecursionTerminates(t *testing.T) {
	t.Parallel()

	p := &Program{
		Version: FormatVersion,
		Tokens:  []TokenDef{{Name: "'x'", Pattern: "x", Kind: SymbolToken}},
		Nonterms: []Nonterm{
			{Name: "start", Prods: []int{0, 1}},
		},
		Prods: []Prod{
			{Nonterm: 0, Elems: []Elem{{OpCall, 0}, {OpToken, 0}}},
			{Nonterm: 0, Elems: []Elem{{OpToken, 0}}},
		},
	}
	_, err := ParseString(p, "in", "x", nil)
	assert.NoError(t, err)
	_, err = ParseString(p, "in", "xx", nil)
	assert.Error(t, err)
}

// start -> sum
// sum   -> term '+' sum | term
// term  -> num | '(' sum ')'
func calcProgram() *Program {
	return &Program{
		Version: FormatVersion,
		Tokens: []TokenDef{
			{Name: "num", Pattern: `[0-9]+`, Kind: PatternToken},
			{Name: "%ignore0", Pattern: `\s+`, Kind: IgnoreToken},
			{Name: "'+'", Pattern: "+", Kind: SymbolToken},
			{Name: "'('", Pattern: "(", Kind: SymbolToken},
			{Name: "')'", Pattern: ")", Kind: SymbolToken},
		},
		Nonterms: []Nonterm{
			{Name: "start", Prods: []int{0}},
			{Name: "sum", Prods: []int{1, 2}},
			{Name: "term", Prods: []int{3, 4}},
		},
		Prods: []Prod{
			{Nonterm: 0, Elems: []Elem{{OpCall, 1}}},
			{Nonterm: 1, Elems: []Elem{{OpCall, 2}, {OpToken, 2}, {OpCall, 1}}, Action: "add"},
			{Nonterm: 1, Elems: []Elem{{OpCall, 2}}},
			{Nonterm: 2, Elems: []Elem{{OpToken, 0}}},
			{Nonterm: 2, Elems: []Elem{{OpToken, 3}, {OpCall, 1}, {OpToken, 4}}},
		},
	}
}

func TestParseDeepNesting(t *testing.T) {
	t.Parallel()

	const depth = 100
	src := strings.Repeat("(", depth) + "1 + 2" + strings.Repeat(")", depth)
	tree, err := ParseString(calcProgram(), "in", src, nil, WithMaxSteps(100_000))
	require.NoError(t, err)
	assert.Len(t, tree.Leaves(), 2*depth+3)

	n := tree.Child(0)
	for i := 0; i < depth; i++ {
		require.Equal(t, "sum", n.Name)
		require.Equal(t, 2, n.Prod)
		n = n.Child(0).Child(1)
	}
	assert.Equal(t, "add", n.Action)
}

func TestParseDeepNestingError(t *testing.T) {
	t.Parallel()

	const depth = 60
	src := strings.Repeat("(", depth) + "1 +" + strings.Repeat(")", depth)
	_, err := ParseString(calcProgram(), "in", src, nil, WithMaxSteps(100_000))
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "')'", pe.Found)
	assert.Equal(t, []string{"'('", "num"}, pe.Expected)
}

func TestParseStepBudget(t *testing.T) {
	t.Parallel()

	_, err := ParseString(testProgram(), "in", "def a def b def c", nil, WithMaxSteps(3))
	assert.ErrorIs(t, err, ErrTooComplex)
}

func TestNewParserChecksVersion(t *testing.T) {
	t.Parallel()

	for _, version := range []string{"2.0.0", "0.9.0", "banana", ""} {
		version := version
		t.Run(version, func(t *testing.T) {
			t.Parallel()
			p := testProgram()
			p.Version = version
			_, err := NewParser(p)
			assert.Error(t, err)
		})
	}
	p := testProgram()
	p.Version = "1.3.0"
	_, err := NewParser(p)
	assert.NoError(t, err)
}

func TestCheckBounds(t *testing.T) {
	t.Parallel()

	p := testProgram()
	p.Prods[1].Elems[1].Sym = 99
	assert.Error(t, p.Check())

	p = testProgram()
	p.Start = 5
	assert.Error(t, p.Check())
}

func TestResultBeforeEOF(t *testing.T) {
	t.Parallel()

	ps, err := NewParser(testProgram())
	require.NoError(t, err)
	_, err = ps.Result()
	assert.Error(t, err)
}

func TestNodeString(t *testing.T) {
	t.Parallel()

	tree, err := ParseString(testProgram(), "in", "def a", nil)
	require.NoError(t, err)
	assert.Equal(t, `start
└── item* (1)
    └── item :decl
        ├── 'def' "def"
        └── id "a"`, tree.String())
}
