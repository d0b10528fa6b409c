package bootstrap

import (
	"fmt"

	"github.com/arr-ai/lmgen/codegen"
	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/semantic"
)

// Names of the bootstrap grammar's tokens and nonterminals, used by the
// loader to walk parse trees.
const (
	Ident = "id"
	Lit   = "lit"
	Regex = "regex"

	Start       = "start"
	Stmt        = "stmt"
	TokenDef    = "token_def"
	IgnoreDef   = "ignore_def"
	KeywordDef  = "keyword_def"
	SymbolDef   = "symbol_def"
	IncludeStmt = "include_stmt"
	DefStmt     = "def_stmt"
	Alt         = "alt"
	Prod        = "prod"
	ProdEl      = "prod_el"
)

// grammarSrc is the bootstrap grammar written in itself. Parsing it with
// Core() must yield the same grammar as Go.
const grammarSrc = `# The grammar-definition language.

token id /[A-Za-z_][A-Za-z0-9_]*/
token lit /'(?:\\.|[^\\'\n])*'|"(?:\\.|[^\\"\n])*"/
token regex /\/(?:\\.|[^\\\/\n])*\/i?/
ignore /\s+/
ignore /#[^\n]*/

keyword 'token' 'ignore' 'def' 'keyword' 'symbol' 'include'
symbol '[' ']' '|' '*' ':'

def start [stmt*]

def stmt [token_def]
       | [ignore_def]
       | [keyword_def]
       | [symbol_def]
       | [def_stmt]
       | [include_stmt]

def token_def [ 'token' id regex ]
def ignore_def [ 'ignore' regex ]
def keyword_def [ 'keyword' lit lit* ]
def symbol_def [ 'symbol' lit lit* ]
def include_stmt [ 'include' lit ]

def def_stmt [ 'def' id prod alt* ]
def alt [ '|' prod ]

def prod [ '[' prod_el* ']' ]
       | [ '[' prod_el* ']' ':' id ]

def prod_el [id]
          | [id '*']
          | [lit]
`

// GrammarSource returns the text of the bootstrap grammar.
func GrammarSource() string {
	return grammarSrc
}

// Go builds the bootstrap grammar into b's context.
func Go(b *Builder) {
	b.Token(Ident, `[A-Za-z_][A-Za-z0-9_]*`)
	b.Token(Lit, `'(?:\\.|[^\\'\n])*'|"(?:\\.|[^\\"\n])*"`)
	b.Token(Regex, `\/(?:\\.|[^\\\/\n])*\/i?`)
	b.Ignore(`\s+`)
	b.Ignore(`#[^\n]*`)

	for _, kw := range []string{"token", "ignore", "def", "keyword", "symbol", "include"} {
		b.Keyword(kw)
	}
	for _, sym := range []string{"[", "]", "|", "*", ":"} {
		b.Symbol(sym)
	}

	b.Definition(Start, b.Production(b.ProdRefNameRepeat(Stmt)))

	for _, alt := range []string{TokenDef, IgnoreDef, KeywordDef, SymbolDef, DefStmt, IncludeStmt} {
		b.Definition(Stmt, b.Production(b.ProdRefName(alt)))
	}

	b.Definition(TokenDef, b.Production(b.ProdRefLit("token"), b.ProdRefName(Ident), b.ProdRefName(Regex)))
	b.Definition(IgnoreDef, b.Production(b.ProdRefLit("ignore"), b.ProdRefName(Regex)))
	b.Definition(KeywordDef, b.Production(b.ProdRefLit("keyword"), b.ProdRefName(Lit), b.ProdRefNameRepeat(Lit)))
	b.Definition(SymbolDef, b.Production(b.ProdRefLit("symbol"), b.ProdRefName(Lit), b.ProdRefNameRepeat(Lit)))
	b.Definition(IncludeStmt, b.Production(b.ProdRefLit("include"), b.ProdRefName(Lit)))

	b.Definition(DefStmt, b.Production(
		b.ProdRefLit("def"), b.ProdRefName(Ident), b.ProdRefName(Prod), b.ProdRefNameRepeat(Alt),
	))
	b.Definition(Alt, b.Production(b.ProdRefLit("|"), b.ProdRefName(Prod)))

	b.Definition(Prod, b.Production(b.ProdRefLit("["), b.ProdRefNameRepeat(ProdEl), b.ProdRefLit("]")))
	b.Definition(Prod, b.Production(
		b.ProdRefLit("["), b.ProdRefNameRepeat(ProdEl), b.ProdRefLit("]"), b.ProdRefLit(":"), b.ProdRefName(Ident),
	))

	b.Definition(ProdEl, b.Production(b.ProdRefName(Ident)))
	b.Definition(ProdEl, b.Production(b.ProdRefName(Ident), b.ProdRefLit("*")))
	b.Definition(ProdEl, b.Production(b.ProdRefName(Lit)))
}

// Build runs Go into a fresh context, analyses it and lowers it to runtime
// tables.
func Build() (*runtime.Program, error) {
	ctx := grammar.New()
	d := diag.New("lmgen", nil)
	Go(NewBuilder(ctx, d))
	if !d.OK() {
		return nil, fmt.Errorf("bootstrap grammar:\n%s", d)
	}
	ctx.Freeze()
	m, err := semantic.Analyze(ctx, semantic.Options{Start: Start})
	if err != nil {
		return nil, fmt.Errorf("bootstrap grammar:\n%w", err)
	}
	return codegen.Lower(m, codegen.Options{}), nil
}

var core = func() *runtime.Program {
	p, err := Build()
	if err != nil {
		panic(err)
	}
	return p
}()

// Core returns the bootstrap program. It is built once per process and must
// not be modified.
func Core() *runtime.Program {
	return core
}
