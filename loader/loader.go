// Package loader reads grammar files. Each file is scanned and parsed with
// the bootstrap program and its statements are replayed, in order, as
// bootstrap.Builder calls on the compilation's grammar context.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arr-ai/frozen"
	"github.com/sirupsen/logrus"

	"github.com/arr-ai/lmgen/bootstrap"
	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/source"
)

type Config struct {
	// Input is the path of the root grammar file.
	Input string
	// Reader, if set, supplies the root file's text instead of opening Input.
	Reader io.Reader
	// IncludePaths are searched, in order, for included files not found next
	// to the including file.
	IncludePaths []string
	// Logger receives progress at debug level and, at trace level, the parse
	// tree of each file or the rules a parse error was found in.
	Logger *logrus.Entry
}

type loader struct {
	cfg    Config
	b      *bootstrap.Builder
	d      *diag.Diagnostics
	log    *logrus.Entry
	loaded frozen.Set[string]
	active []string
}

// Load adds the statements of cfg.Input and everything it includes to ctx.
// Problems in the grammar text are reported to d. The returned error is set
// only when the root file itself could not be read.
func Load(cfg Config, ctx *grammar.Context, d *diag.Diagnostics) error {
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	l := &loader{
		cfg:    cfg,
		b:      bootstrap.NewBuilder(ctx, d),
		d:      d,
		log:    log,
		loaded: frozen.NewSet[string](),
	}

	r := cfg.Reader
	if r == nil {
		f, err := os.Open(cfg.Input)
		if err != nil {
			d.ProgramErrorf(diag.IOError, "could not open %s for reading: %s", cfg.Input, reason(err))
			return err
		}
		defer f.Close()
		r = f
	}
	return l.loadFile(cfg.Input, r)
}

func reason(err error) string {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

func key(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return file
}

func (l *loader) loadFile(file string, r io.Reader) error {
	k := key(file)
	l.loaded = l.loaded.With(k)
	l.active = append(l.active, k)
	defer func() { l.active = l.active[:len(l.active)-1] }()

	log := l.log.WithField("file", file)
	log.Debug("loading")
	tree, err := l.parse(file, r, log)
	if err != nil {
		l.d.Errorf(diag.IOError, source.At(file, 0, 0), "read failed: %s", err)
		return err
	}
	if tree == nil {
		// The parser has reported why.
		return nil
	}
	stmts := tree.Child(0).Children
	for _, stmt := range stmts {
		l.statement(file, stmt.Child(0))
	}
	log.WithField("statements", len(stmts)).Debug("loaded")
	return nil
}

// parse returns a nil tree if the text did not parse. Only read failures are
// returned as errors; everything else goes to the diagnostics.
func (l *loader) parse(file string, r io.Reader, log *logrus.Entry) (*runtime.Node, error) {
	p := bootstrap.Core()
	lx, err := runtime.NewLexer(p)
	if err != nil {
		panic(err)
	}
	ps, err := runtime.NewParser(p,
		runtime.WithReporter(l.d.For(diag.SyntaxError)),
		runtime.WithLogger(l.log),
	)
	if err != nil {
		panic(err)
	}
	sc := runtime.NewScanner(lx, file, l.d.For(diag.LexicalError), ps)
	if err := sc.Scan(r); err != nil {
		return nil, err
	}
	sc.EOF()
	tree, err := ps.Result()
	if log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		var pe runtime.ParseError
		switch {
		case tree != nil:
			var buf strings.Builder
			if err := bootstrap.PrintParseTree(&buf, tree); err == nil {
				log.Trace("parse tree\n" + buf.String())
			}
		case errors.As(err, &pe):
			log.Trace(pe.Tree().Print())
		}
	}
	return tree, nil
}

func (l *loader) statement(file string, n *runtime.Node) {
	switch n.Name {
	case bootstrap.TokenDef:
		name, re := n.Child(1), n.Child(2)
		if b, pattern, ok := l.regex(re); ok {
			b.At(name.Loc).Token(name.Text, pattern)
		}
	case bootstrap.IgnoreDef:
		if b, pattern, ok := l.regex(n.Child(1)); ok {
			b.At(n.Loc).Ignore(pattern)
		}
	case bootstrap.KeywordDef, bootstrap.SymbolDef:
		lits := append([]*runtime.Node{n.Child(1)}, n.Child(2).Children...)
		for _, lit := range lits {
			text, ok := l.literal(lit)
			if !ok {
				continue
			}
			if n.Name == bootstrap.KeywordDef {
				l.b.At(lit.Loc).Keyword(text)
			} else {
				l.b.At(lit.Loc).Symbol(text)
			}
		}
	case bootstrap.IncludeStmt:
		if path, ok := l.literal(n.Child(1)); ok {
			l.include(file, path, n.Child(1).Loc)
		}
	case bootstrap.DefStmt:
		name := n.Child(1)
		l.production(name, n.Child(2))
		for _, alt := range n.Child(3).Children {
			l.production(name, alt.Child(1))
		}
	default:
		panic(fmt.Errorf("loader: unexpected statement %s", n.Name))
	}
}

func (l *loader) production(name, prod *runtime.Node) {
	var els []grammar.ProdEl
	for _, el := range prod.Child(1).Children {
		b := l.b.At(el.Loc)
		first := el.Child(0)
		switch {
		case first.Name == bootstrap.Lit:
			if text, ok := l.literal(first); ok {
				els = append(els, b.ProdRefLit(text))
			}
		case len(el.Children) == 2:
			els = append(els, b.ProdRefNameRepeat(first.Text))
		default:
			els = append(els, b.ProdRefName(first.Text))
		}
	}
	p := l.b.At(prod.Loc).Production(els...)
	if action := prod.Child(4); action != nil {
		p.Action = action.Text
	}
	l.b.At(name.Loc).Definition(name.Text, p)
}

// regex splits a /.../ or /.../i token into its pattern and a builder with
// the matching case sensitivity.
func (l *loader) regex(n *runtime.Node) (*bootstrap.Builder, string, bool) {
	text, b := n.Text, l.b
	if strings.HasSuffix(text, "/i") {
		text = text[:len(text)-1]
		b = b.CaseInsensitive()
	}
	pattern := text[1 : len(text)-1]
	if pattern == "" {
		l.d.Errorf(diag.SyntaxError, n.Loc, "empty regular expression")
		return nil, "", false
	}
	return b, pattern, true
}

func (l *loader) literal(n *runtime.Node) (string, bool) {
	text, err := Unquote(n.Text)
	if err != nil {
		l.d.Errorf(diag.LexicalError, n.Loc, "invalid literal %s: %s", n.Text, err)
		return "", false
	}
	return text, true
}

func (l *loader) include(from, path string, loc source.Loc) {
	file, ok := l.resolve(from, path)
	if !ok {
		l.d.Errorf(diag.IOError, loc, "could not find include file %q", path)
		return
	}
	k := key(file)
	for i, a := range l.active {
		if a == k {
			route := append(append([]string(nil), l.active[i:]...), k)
			for j := range route {
				route[j] = filepath.Base(route[j])
			}
			l.d.Errorf(diag.SemanticError, loc, "include cycle: %s", strings.Join(route, " > "))
			return
		}
	}
	if l.loaded.Has(k) {
		return
	}
	f, err := os.Open(file)
	if err != nil {
		l.d.Errorf(diag.IOError, loc, "could not open %s for reading: %s", file, reason(err))
		return
	}
	defer f.Close()
	// A failed read has already been reported against the included file.
	l.loadFile(file, f) //nolint:errcheck
}

func (l *loader) resolve(from, path string) (string, bool) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		candidates = []string{filepath.Join(filepath.Dir(from), path)}
		for _, dir := range l.cfg.IncludePaths {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
