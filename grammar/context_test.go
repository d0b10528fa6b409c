package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arr-ai/lmgen/errors"
	"github.com/arr-ai/lmgen/source"
)

func ref(name string) ProdEl { return ProdEl{Kind: RefElem, Name: name} }
func lit(text string) ProdEl { return ProdEl{Kind: LitElem, Name: text} }

func TestAlternativesAppend(t *testing.T) {
	t.Parallel()

	c := New()
	a := c.AddAlternative("x", source.At("g", 1, 1), Production{Elems: []ProdEl{lit("a")}})
	b := c.AddAlternative("x", source.At("g", 2, 1), Production{Elems: []ProdEl{lit("b")}})

	def, has := c.Definition("x")
	require.True(t, has)
	assert.Equal(t, []int{a, b}, def.Alts)
	assert.Equal(t, source.At("g", 1, 1), def.Loc)
	assert.Len(t, c.Definitions(), 1)

	alts := c.Alternatives("x")
	require.Len(t, alts, 2)
	assert.Equal(t, "['a']", alts[0].String())
	assert.Equal(t, "['b']", alts[1].String())
	assert.Equal(t, 0, alts[1].Def)
}

func TestProductionOrderIsPreserved(t *testing.T) {
	t.Parallel()

	c := New()
	id := c.AddAlternative("x", source.Loc{}, Production{Elems: []ProdEl{ref("a"), ref("b")}})
	p := c.Production(id)
	require.Len(t, p.Elems, 2)
	assert.Equal(t, "a", p.Elems[0].Name)
	assert.Equal(t, "b", p.Elems[1].Name)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	t.Parallel()

	c := New()
	elems := []ProdEl{ref("a")}
	id := c.AddAlternative("x", source.Loc{}, Production{Elems: elems})
	elems[0].Name = "changed"

	p := c.Production(id)
	assert.Equal(t, "a", p.Elems[0].Name)
	p.Elems[0].Name = "changed"
	assert.Equal(t, "a", c.Production(id).Elems[0].Name)

	def, _ := c.Definition("x")
	def.Alts[0] = 99
	def, _ = c.Definition("x")
	assert.Equal(t, []int{id}, def.Alts)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	c := New()
	kw, err := c.AddToken(Token{Kind: Keyword, Text: "def"})
	require.NoError(t, err)
	assert.Equal(t, "'def'", kw.Name)

	_, err = c.AddToken(Token{Kind: Keyword, Text: "def"})
	assert.NoError(t, err, "re-registering the same class is allowed")

	_, err = c.AddToken(Token{Kind: Symbol, Text: "def"})
	var conflict ClassConflictError
	if assert.ErrorAs(t, err, &conflict) {
		assert.Equal(t, Keyword, conflict.Existing)
		assert.Equal(t, Symbol, conflict.Requested)
	}

	_, err = c.AddToken(Token{Kind: Pattern, Name: "id", Text: `[a-z]+`})
	require.NoError(t, err)
	_, err = c.AddToken(Token{Kind: Pattern, Name: "id", Text: `[a-z]+`})
	assert.NoError(t, err)
	_, err = c.AddToken(Token{Kind: Pattern, Name: "id", Text: `[a-z]*`})
	assert.IsType(t, TokenRedefinedError{}, err)

	ws1, err := c.AddToken(Token{Kind: Ignore, Text: `\s+`})
	require.NoError(t, err)
	ws2, err := c.AddToken(Token{Kind: Ignore, Text: `\s+`})
	require.NoError(t, err)
	assert.Equal(t, ws1.Name, ws2.Name)
	_, err = c.AddToken(Token{Kind: Ignore, Text: `#.*`})
	require.NoError(t, err)

	assert.Len(t, c.Tokens(), 4)
	tok, has := c.Literal("def")
	assert.True(t, has)
	assert.Equal(t, Keyword, tok.Kind)
	tok, has = c.Token("id")
	assert.True(t, has)
	assert.Equal(t, Pattern, tok.Kind)
	_, has = c.Token("def")
	assert.False(t, has)
}

func TestFreeze(t *testing.T) {
	t.Parallel()

	c := New()
	c.AddAlternative("x", source.Loc{}, Production{Elems: []ProdEl{lit("a")}})
	c.Freeze()
	assert.True(t, c.Frozen())

	assert.PanicsWithValue(t, errors.ErrFrozen, func() {
		c.AddAlternative("x", source.Loc{}, Production{Elems: []ProdEl{lit("b")}})
	})
	assert.PanicsWithValue(t, errors.ErrFrozen, func() {
		_, _ = c.AddToken(Token{Kind: Symbol, Text: "+"})
	})

	// annotations are still allowed
	c.SetBranchPoints("x", []BranchPoint{{Alts: []int{0}, Prefix: 1}})
	assert.Equal(t, []BranchPoint{{Alts: []int{0}, Prefix: 1}}, c.BranchPoints("x"))
	assert.Len(t, c.Alternatives("x"), 1)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	build := func(loc source.Loc) *Context {
		c := New()
		_, _ = c.AddToken(Token{Kind: Symbol, Text: "+", Loc: loc})
		c.AddAlternative("e", loc, Production{Elems: []ProdEl{ref("t"), {Kind: RepeatElem, Name: "more"}}, Loc: loc})
		c.AddAlternative("more", loc, Production{Elems: []ProdEl{lit("+"), ref("t")}, Action: "add", Loc: loc})
		return c
	}

	a := build(source.At("a", 1, 1)).Snapshot()
	b := build(source.At("b", 7, 3)).Snapshot()
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"symbol '+'"}, a.Tokens)
	assert.Equal(t, []DefinitionSnapshot{
		{Name: "e", Alternatives: []string{"[t more*]"}},
		{Name: "more", Alternatives: []string{"['+' t] :add"}},
	}, a.Definitions)
}

func TestLiteralName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'def'", LiteralName("def"))
	assert.Equal(t, `'\''`, LiteralName("'"))
	assert.Equal(t, `'\n'`, LiteralName("\n"))
}
