package bootstrap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sanity-io/litter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arr-ai/lmgen/codegen"
	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/semantic"
	"github.com/arr-ai/lmgen/source"
)

func newBuilder() (*Builder, *diag.Diagnostics) {
	d := diag.New("lmgen", nil)
	return NewBuilder(grammar.New(), d), d
}

func TestCore(t *testing.T) {
	t.Parallel()

	p := Core()
	require.NoError(t, p.Check())
	assert.Equal(t, Start, p.Nonterms[p.Start].Name)
	assert.Same(t, p, Core())
}

func TestGoIsDeterministic(t *testing.T) {
	t.Parallel()

	snapshot := func() string {
		b, d := newBuilder()
		Go(b)
		require.True(t, d.OK(), d.String())
		return litter.Sdump(b.Context().Snapshot())
	}
	first := snapshot()
	assert.Equal(t, first, snapshot())
	assert.Contains(t, first, `"['[' prod_el* ']' ':' id]"`)
}

func TestGoShape(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder()
	Go(b)
	ctx := b.Context()
	assert.Len(t, ctx.Alternatives(Stmt), 6)
	assert.Len(t, ctx.Alternatives(Prod), 2)
	assert.Len(t, ctx.Alternatives(ProdEl), 3)
	def, has := ctx.Literal("def")
	require.True(t, has)
	assert.Equal(t, grammar.Keyword, def.Kind)
	star, has := ctx.Literal("*")
	require.True(t, has)
	assert.Equal(t, grammar.Symbol, star.Kind)
}

func TestProductionKeepsAllElements(t *testing.T) {
	t.Parallel()

	b, d := newBuilder()
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	var els []grammar.ProdEl
	for _, n := range names {
		els = append(els, b.ProdRefName(n))
	}
	id := b.Definition("x", b.Production(els...))
	assert.True(t, d.OK())
	p := b.Context().Production(id)
	require.Len(t, p.Elems, len(names))
	for i, n := range names {
		assert.Equal(t, n, p.Elems[i].Name)
	}
	assert.Equal(t, "[a b c d e f g]", p.String())
}

func TestProductionEmpty(t *testing.T) {
	t.Parallel()

	b, d := newBuilder()
	b.Production()
	assert.Equal(t, 1, d.Count(diag.SemanticError))
}

func TestDefinitionAppends(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder()
	b.Keyword("x")
	b.Definition("s", b.Production(b.ProdRefLit("x")))
	b.Definition("t", b.Production(b.ProdRefName("s")))
	b.Definition("s", b.Production(b.ProdRefLit("x"), b.ProdRefLit("x")))
	ctx := b.Context()
	require.Len(t, ctx.Definitions(), 2)
	alts := ctx.Alternatives("s")
	require.Len(t, alts, 2)
	assert.Len(t, alts[0].Elems, 1)
	assert.Len(t, alts[1].Elems, 2)
}

func TestLiterals(t *testing.T) {
	t.Parallel()

	b, d := newBuilder()
	kw := b.Keyword("if")
	assert.Equal(t, kw, b.Keyword("if"))
	assert.True(t, d.OK())

	b.Symbol("if")
	assert.Equal(t, 1, d.ErrorCount())
	assert.Contains(t, d.String(), "'if' already registered as a keyword, not a symbol")

	assert.Equal(t, grammar.Symbol, b.Symbol("+=").Kind)
	assert.Equal(t, "'+='", b.Symbol("+=").Name)
	assert.Equal(t, 1, d.ErrorCount())

	b.Keyword("")
	assert.Equal(t, 2, d.ErrorCount())
}

func TestTokens(t *testing.T) {
	t.Parallel()

	b, d := newBuilder()
	b.Token("num", `\d+`)
	b.Token("num", `\d+`)
	assert.True(t, d.OK())
	b.Token("num", `[0-9]+`)
	assert.Equal(t, 1, d.ErrorCount())

	ws := b.Ignore(`\s+`)
	assert.Equal(t, ws, b.Ignore(`\s+`))
	assert.Equal(t, grammar.Ignore, ws.Kind)

	word := b.CaseInsensitive().Token("word", `[a-z]+`)
	assert.True(t, word.CaseInsensitive)
}

func TestLocations(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder()
	el := b.ProdRefName("a")
	assert.Equal(t, "bootstrap_test.go", el.Loc.File)
	assert.True(t, el.Loc.IsValid())

	loc := source.At("g.lm", 3, 7)
	at := b.At(loc)
	assert.Equal(t, loc, at.ProdRefLit("x").Loc)
	assert.Equal(t, loc, at.Production(at.ProdRefName("a")).Loc)
	assert.Equal(t, loc, at.Keyword("k").Loc)
	at.Definition("d", at.Production(at.ProdRefName("a")))
	def, _ := b.Context().Definition("d")
	assert.Equal(t, loc, def.Loc)
}

func compileWith(t *testing.T, build func(b *Builder)) *runtime.Program {
	t.Helper()
	b, d := newBuilder()
	build(b)
	require.True(t, d.OK(), d.String())
	b.Context().Freeze()
	m, err := semantic.Analyze(b.Context(), semantic.Options{})
	require.NoError(t, err)
	return codegen.Lower(m, codegen.Options{})
}

func TestSingleLiteralGrammar(t *testing.T) {
	t.Parallel()

	p := compileWith(t, func(b *Builder) {
		b.Ignore(`\s+`)
		b.Keyword("hello")
		b.Definition("start", b.Production(b.ProdRefLit("hello")))
	})
	for _, test := range []struct {
		input string
		ok    bool
	}{
		{"hello", true},
		{"  hello\n", true},
		{"", false},
		{"hello hello", false},
		{"world", false},
		{"hell", false},
		{"helloo", false},
	} {
		_, err := runtime.ParseString(p, "in", test.input, nil)
		if test.ok {
			assert.NoError(t, err, "%q", test.input)
		} else {
			assert.Error(t, err, "%q", test.input)
		}
	}
}

func TestCoreParsesGrammarText(t *testing.T) {
	t.Parallel()

	tree, err := runtime.ParseString(Core(), "g.lm", `
token num /[0-9]+/i  # digits
symbol '+'
def start [num '+' num] :add
        | [num*]
`, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintParseTree(&buf, tree))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "start\n"), out)
	assert.Contains(t, out, "stmt > token_def")
	assert.Contains(t, out, `regex "/[0-9]+/i"`)
	assert.Contains(t, out, `id "add"`)
	assert.Contains(t, out, `lit "'+'"`)
}

func TestCoreRejectsBadText(t *testing.T) {
	t.Parallel()

	var rep recorder
	_, err := runtime.ParseString(Core(), "g.lm", "def start [a\n", &rep)
	var pe runtime.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, runtime.EndOfInput, pe.Found)
	assert.Contains(t, pe.Expected, "']'")
	assert.Len(t, rep, 1)
}

type recorder []string

func (r *recorder) Errorf(loc source.Loc, format string, args ...interface{}) {
	*r = append(*r, loc.String())
}
