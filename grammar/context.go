package grammar

import (
	"fmt"

	"github.com/arr-ai/lmgen/errors"
	"github.com/arr-ai/lmgen/source"
)

// Context owns every grammar entity of one compilation. Entities live in
// slices and refer to each other by index, so the whole grammar is released
// at once and never aliases.
//
// A Context is populated by the construction phase and then frozen. After
// Freeze, structural registration panics with errors.ErrFrozen; only derived
// annotations may still be attached.
type Context struct {
	tokens  []Token
	byName  map[string]int
	byText  map[string]int
	ignores int

	defs     []Definition
	defIndex map[string]int
	prods    []Production

	branchPoints map[int][]BranchPoint
	frozen       bool
}

func New() *Context {
	return &Context{
		byName:       map[string]int{},
		byText:       map[string]int{},
		defIndex:     map[string]int{},
		branchPoints: map[int][]BranchPoint{},
	}
}

func (c *Context) mutate() {
	if c.frozen {
		panic(errors.ErrFrozen)
	}
}

// AddToken registers t and returns the registered token. Registering the same
// token twice is not an error. Registering a literal spelling under a
// different class, or a pattern name with a different pattern, is.
func (c *Context) AddToken(t Token) (Token, error) {
	c.mutate()
	switch t.Kind {
	case Keyword, Symbol:
		t.Name = LiteralName(t.Text)
		if i, has := c.byText[t.Text]; has {
			existing := c.tokens[i]
			if existing.Kind != t.Kind {
				return existing, ClassConflictError{Text: t.Text, Existing: existing.Kind, Requested: t.Kind}
			}
			return existing, nil
		}
		c.byText[t.Text] = c.add(t)
	case Pattern:
		if i, has := c.byName[t.Name]; has {
			existing := c.tokens[i]
			if existing.Text != t.Text || existing.CaseInsensitive != t.CaseInsensitive {
				return existing, TokenRedefinedError{Name: t.Name, Previous: existing.Loc}
			}
			return existing, nil
		}
		c.add(t)
	case Ignore:
		for _, existing := range c.tokens {
			if existing.Kind == Ignore && existing.Text == t.Text {
				return existing, nil
			}
		}
		t.Name = fmt.Sprintf("%%ignore%d", c.ignores)
		c.ignores++
		c.add(t)
	default:
		panic(errors.Inconceivable)
	}
	return t, nil
}

func (c *Context) add(t Token) int {
	i := len(c.tokens)
	c.tokens = append(c.tokens, t)
	c.byName[t.Name] = i
	return i
}

// AddAlternative appends p to the alternatives of the named definition,
// creating the definition at loc if it does not exist yet. It returns the id
// of the stored production.
func (c *Context) AddAlternative(name string, loc source.Loc, p Production) int {
	c.mutate()
	d, has := c.defIndex[name]
	if !has {
		d = len(c.defs)
		c.defs = append(c.defs, Definition{Name: name, Loc: loc})
		c.defIndex[name] = d
	}
	p.Elems = append([]ProdEl(nil), p.Elems...)
	p.Def = d
	id := len(c.prods)
	c.prods = append(c.prods, p)
	c.defs[d].Alts = append(c.defs[d].Alts, id)
	return id
}

// Freeze ends construction. It may be called more than once.
func (c *Context) Freeze() {
	c.frozen = true
}

func (c *Context) Frozen() bool {
	return c.frozen
}

func (c *Context) Definition(name string) (Definition, bool) {
	if d, has := c.defIndex[name]; has {
		return c.definition(d), true
	}
	return Definition{}, false
}

func (c *Context) DefinitionIndex(name string) (int, bool) {
	d, has := c.defIndex[name]
	return d, has
}

func (c *Context) definition(d int) Definition {
	def := c.defs[d]
	def.Alts = append([]int(nil), def.Alts...)
	return def
}

// Definitions returns all definitions in the order they were first defined.
func (c *Context) Definitions() []Definition {
	out := make([]Definition, 0, len(c.defs))
	for d := range c.defs {
		out = append(out, c.definition(d))
	}
	return out
}

func (c *Context) Production(id int) Production {
	p := c.prods[id]
	p.Elems = append([]ProdEl(nil), p.Elems...)
	return p
}

func (c *Context) Productions() []Production {
	out := make([]Production, 0, len(c.prods))
	for id := range c.prods {
		out = append(out, c.Production(id))
	}
	return out
}

// Alternatives returns the productions of the named definition in order.
func (c *Context) Alternatives(name string) []Production {
	d, has := c.defIndex[name]
	if !has {
		return nil
	}
	out := make([]Production, 0, len(c.defs[d].Alts))
	for _, id := range c.defs[d].Alts {
		out = append(out, c.Production(id))
	}
	return out
}

// Token looks a token up by name. Literal tokens are named by LiteralName.
func (c *Context) Token(name string) (Token, bool) {
	if i, has := c.byName[name]; has {
		return c.tokens[i], true
	}
	return Token{}, false
}

// Literal looks a keyword or symbol up by spelling.
func (c *Context) Literal(text string) (Token, bool) {
	if i, has := c.byText[text]; has {
		return c.tokens[i], true
	}
	return Token{}, false
}

// Tokens returns all tokens in registration order.
func (c *Context) Tokens() []Token {
	return append([]Token(nil), c.tokens...)
}

// SetBranchPoints annotates a definition. Annotations are derived data and may
// be attached to a frozen context.
func (c *Context) SetBranchPoints(name string, bps []BranchPoint) {
	if d, has := c.defIndex[name]; has {
		c.branchPoints[d] = append([]BranchPoint(nil), bps...)
	}
}

func (c *Context) BranchPoints(name string) []BranchPoint {
	if d, has := c.defIndex[name]; has {
		return append([]BranchPoint(nil), c.branchPoints[d]...)
	}
	return nil
}
