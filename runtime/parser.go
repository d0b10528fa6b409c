package runtime

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arr-ai/lmgen/source"
)

// DefaultMaxSteps bounds the work of a single parse.
const DefaultMaxSteps = 1 << 24

const endSym = -1

type Option func(*Parser)

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) { p.log = log }
}

func WithReporter(rep Reporter) Option {
	return func(p *Parser) {
		if rep != nil {
			p.rep = rep
		}
	}
}

// WithMaxSteps sets the step budget. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(p *Parser) { p.maxSteps = n }
}

// cont is called with the position after a successful match. Returning true
// accepts the whole parse; false asks the caller to try something else.
type cont func(pos int, n *Node) bool

// Parser recognises a token stream against a Program. It collects tokens as
// a Sink and parses them all at EOF, trying alternatives in order and
// backtracking into earlier choices until the start rule spans the input.
// What a rule matched at a position is remembered once all its alternatives
// have been tried, so no rule is expanded twice at the same position.
type Parser struct {
	prog     *Program
	log      logrus.FieldLogger
	rep      Reporter
	maxSteps int

	toks []Token
	end  source.Loc
	done bool
	tree *Node
	err  error

	steps    int
	aborted  bool
	active   map[[2]int]int
	memo     map[[2]int]*memo
	cuts     int
	path     []int
	furthest int
	expected map[int]bool
	within   []string
}

func NewParser(p *Program, opts ...Option) (*Parser, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	ps := &Parser{
		prog:     p,
		log:      logrus.StandardLogger(),
		rep:      discard{},
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps, nil
}

func (ps *Parser) Token(tok Token) {
	ps.toks = append(ps.toks, tok)
}

func (ps *Parser) EOF(loc source.Loc) {
	ps.end = loc
	ps.tree, ps.err = ps.run()
	ps.done = true
	var pe ParseError
	switch {
	case errors.As(ps.err, &pe):
		ps.rep.Errorf(pe.Loc, "%s", pe.Error())
	case ps.err != nil:
		ps.rep.Errorf(loc, "%s", ps.err.Error())
	}
}

// Result returns the parse tree once EOF has been seen.
func (ps *Parser) Result() (*Node, error) {
	if !ps.done {
		return nil, errors.New("parser has not seen end of input")
	}
	return ps.tree, ps.err
}

func (ps *Parser) run() (*Node, error) {
	ps.steps, ps.aborted = 0, false
	ps.active = map[[2]int]int{}
	ps.memo = map[[2]int]*memo{}
	ps.cuts = 0
	ps.path = ps.path[:0]
	ps.furthest = -1
	ps.expected = nil

	var tree *Node
	ok := ps.call(ps.prog.Start, 0, func(end int, n *Node) bool {
		if end < len(ps.toks) {
			ps.fail(end, endSym)
			return false
		}
		tree = n
		return true
	})
	switch {
	case ok:
		return tree, nil
	case ps.aborted:
		return nil, ErrTooComplex
	}
	return nil, ps.parseError()
}

func (ps *Parser) step() bool {
	ps.steps++
	if ps.maxSteps > 0 && ps.steps > ps.maxSteps {
		ps.aborted = true
	}
	return !ps.aborted
}

func (ps *Parser) locAt(pos int) source.Loc {
	if pos < len(ps.toks) {
		return ps.toks[pos].Loc
	}
	return ps.end
}

func (ps *Parser) fail(pos, sym int) {
	if pos > ps.furthest {
		ps.furthest = pos
		ps.expected = map[int]bool{}
		ps.within = ps.within[:0]
		for _, nt := range ps.path {
			ps.within = append(ps.within, ps.prog.Nonterms[nt].Name)
		}
	}
	if pos == ps.furthest {
		ps.expected[sym] = true
	}
}

func (ps *Parser) parseError() ParseError {
	pos := ps.furthest
	if pos < 0 {
		pos = 0
	}
	e := ParseError{Loc: ps.locAt(pos), Found: EndOfInput}
	if pos < len(ps.toks) {
		tok := ps.toks[pos]
		def := ps.prog.Tokens[tok.Type]
		e.Found = def.Name
		if !def.Kind.IsLiteral() {
			e.Found += " " + quoteText(tok.Text)
		}
	}
	for sym := range ps.expected {
		if sym == endSym {
			e.Expected = append(e.Expected, EndOfInput)
		} else {
			e.Expected = append(e.Expected, ps.prog.Tokens[sym].Name)
		}
	}
	sort.Strings(e.Expected)
	e.Within = append([]string(nil), ps.within...)
	return e
}

func quoteText(s string) string {
	if r := []rune(s); len(r) > 20 {
		s = string(r[:20]) + "..."
	}
	return strconv.Quote(s)
}

func (ps *Parser) matchToken(sym, pos int, k cont) bool {
	if !ps.step() {
		return false
	}
	if pos < len(ps.toks) && ps.toks[pos].Type == sym {
		tok := ps.toks[pos]
		if ps.prog.Logging {
			ps.log.WithFields(logrus.Fields{"token": ps.prog.Tokens[sym].Name, "loc": tok.Loc}).Trace("shift")
		}
		return k(pos+1, &Node{
			Name: ps.prog.Tokens[sym].Name,
			Kind: TokenNode,
			Prod: -1,
			Text: tok.Text,
			Loc:  tok.Loc,
		})
	}
	ps.fail(pos, sym)
	return false
}

// memo holds what one nonterminal matched from one position: each distinct
// end position in the order it was first reached, with the first tree that
// reached it. Continuations only look at the end position, so later trees
// ending at the same place can never succeed where the first one failed.
type memo struct {
	done    bool
	ends    map[int]bool
	results []match
}

type match struct {
	end  int
	node *Node
}

func newMemo() *memo {
	return &memo{ends: map[int]bool{}}
}

func (ps *Parser) call(nt, pos int, k cont) bool {
	if !ps.step() {
		return false
	}
	key := [2]int{nt, pos}
	if ps.active[key] > 0 {
		// Re-entering a rule at the same position can never make progress.
		ps.cuts++
		return false
	}
	m, has := ps.memo[key]
	if has && m.done {
		for _, r := range m.results {
			if k(r.end, r.node) {
				return true
			}
			if ps.aborted {
				return false
			}
		}
		return false
	}
	// A rule whose expansion is still feeding a continuation further out is
	// expanded again here, but its results are not kept.
	record := !has
	m = newMemo()
	if record {
		ps.memo[key] = m
	}
	cuts := ps.cuts

	ps.active[key]++
	ps.path = append(ps.path, nt)
	accepted := ps.expand(nt, pos, m, k)
	ps.active[key]--
	ps.path = ps.path[:len(ps.path)-1]

	switch {
	case accepted:
		return true
	case !record:
	case ps.aborted || ps.cuts != cuts:
		// Results cut short by the recursion guard depend on the caller.
		delete(ps.memo, key)
	default:
		m.done = true
	}
	return false
}

func (ps *Parser) expand(nt, pos int, m *memo, k cont) bool {
	key := [2]int{nt, pos}
	def := ps.prog.Nonterms[nt]
	for _, id := range def.Prods {
		prod := ps.prog.Prods[id]
		if ps.prog.Logging {
			ps.log.WithFields(logrus.Fields{"rule": def.Name, "prod": id, "loc": ps.locAt(pos)}).Debug("enter")
		}
		accepted := ps.seq(prod.Elems, pos, nil, func(end int, kids []*Node) bool {
			if m.ends[end] {
				return false
			}
			m.ends[end] = true
			n := &Node{
				Name:     def.Name,
				Kind:     NonterminalNode,
				Prod:     id,
				Action:   prod.Action,
				Children: kids,
				Loc:      ps.locAt(pos),
			}
			m.results = append(m.results, match{end: end, node: n})
			if ps.prog.Logging {
				ps.log.WithFields(logrus.Fields{"rule": def.Name, "prod": id, "loc": n.Loc}).Debug("reduce")
			}
			ps.active[key]--
			ps.path = ps.path[:len(ps.path)-1]
			ok := k(end, n)
			ps.path = append(ps.path, nt)
			ps.active[key]++
			return ok
		})
		if accepted {
			return true
		}
		if ps.aborted {
			return false
		}
	}
	return false
}

func (ps *Parser) seq(elems []Elem, pos int, kids []*Node, k func(int, []*Node) bool) bool {
	if len(elems) == 0 {
		return k(pos, kids)
	}
	e := elems[0]
	next := func(end int, n *Node) bool {
		return ps.seq(elems[1:], end, append(kids[:len(kids):len(kids)], n), k)
	}
	switch e.Op {
	case OpToken:
		return ps.matchToken(e.Sym, pos, next)
	case OpCall:
		return ps.call(e.Sym, pos, next)
	}
	return ps.repeat(e, pos, pos, nil, next)
}

// repeat matches as many items as it can, then gives them back one at a time
// if the rest of the parse fails.
func (ps *Parser) repeat(e Elem, start, pos int, items []*Node, k cont) bool {
	more := func(end int, n *Node) bool {
		if end == pos {
			return false
		}
		return ps.repeat(e, start, end, append(items[:len(items):len(items)], n), k)
	}
	var ok bool
	if e.Op == OpRepeatToken {
		ok = ps.matchToken(e.Sym, pos, more)
	} else {
		ok = ps.call(e.Sym, pos, more)
	}
	if ok {
		return true
	}
	if ps.aborted {
		return false
	}
	return k(pos, &Node{
		Name:     ps.prog.symbolName(e),
		Kind:     RepeatNode,
		Prod:     -1,
		Children: items,
		Loc:      ps.locAt(start),
	})
}

// Parse scans and parses all of r. Lexical and syntax errors go to rep as
// they are found; the returned error summarises the first failure.
func Parse(p *Program, filename string, r io.Reader, rep Reporter, opts ...Option) (*Node, error) {
	lx, err := NewLexer(p)
	if err != nil {
		return nil, err
	}
	ps, err := NewParser(p, append(opts, WithReporter(rep))...)
	if err != nil {
		return nil, err
	}
	sc := NewScanner(lx, filename, rep, ps)
	if err := sc.Scan(r); err != nil {
		return nil, err
	}
	sc.EOF()
	tree, err := ps.Result()
	if err != nil {
		return nil, err
	}
	if n := sc.Errors(); n > 0 {
		return nil, ScanError{File: filename, Count: n}
	}
	return tree, nil
}

func ParseString(p *Program, filename, src string, rep Reporter, opts ...Option) (*Node, error) {
	return Parse(p, filename, strings.NewReader(src), rep, opts...)
}
