package runtime

import (
	"fmt"
	"io"
	"regexp"

	"github.com/arr-ai/lmgen/source"
)

// Token is one significant lexeme. Type indexes Program.Tokens.
type Token struct {
	Type int
	Text string
	Loc  source.Loc
}

// Reporter receives errors found while scanning or parsing.
type Reporter interface {
	Errorf(loc source.Loc, format string, args ...interface{})
}

type discard struct{}

func (discard) Errorf(source.Loc, string, ...interface{}) {}

// Sink consumes the token stream of a Scanner.
type Sink interface {
	Token(tok Token)
	// EOF signals the end of input. loc is the position just past the text.
	EOF(loc source.Loc)
}

type lexRule struct {
	tok     int
	re      *regexp.Regexp
	literal bool
	ignore  bool
}

// Lexer matches the token table of a program. It is immutable and may be
// shared by many scanners.
type Lexer struct {
	prog  *Program
	rules []lexRule
}

func NewLexer(p *Program) (*Lexer, error) {
	lx := &Lexer{prog: p}
	for i, t := range p.Tokens {
		expr := t.Pattern
		if t.Kind.IsLiteral() {
			expr = regexp.QuoteMeta(t.Pattern)
		}
		if t.CaseInsensitive {
			expr = "(?i:" + expr + ")"
		}
		re, err := regexp.Compile(`\A(?:` + expr + `)`)
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", t.Name, err)
		}
		lx.rules = append(lx.rules, lexRule{
			tok:     i,
			re:      re,
			literal: t.Kind.IsLiteral(),
			ignore:  t.Kind == IgnoreToken,
		})
	}
	return lx, nil
}

// match finds the token at the cursor. The longest match wins; on a tie
// literal tokens beat patterns and earlier tokens beat later ones. Empty
// matches never count.
func (lx *Lexer) match(c *source.Cursor) (rule lexRule, n int, ok bool) {
	for _, r := range lx.rules {
		m, found := c.MatchRegexp(r.re)
		if !found || m == 0 {
			continue
		}
		if m > n || (m == n && r.literal && !rule.literal) {
			rule, n, ok = r, m, true
		}
	}
	return
}

// Scanner drives a Lexer over one input and feeds a Sink.
type Scanner struct {
	lx     *Lexer
	file   string
	rep    Reporter
	sink   Sink
	end    source.Loc
	errors int
}

func NewScanner(lx *Lexer, file string, rep Reporter, sink Sink) *Scanner {
	if rep == nil {
		rep = discard{}
	}
	return &Scanner{lx: lx, file: file, rep: rep, sink: sink, end: source.At(file, 1, 1)}
}

// Scan reads all of r and emits its tokens. Only read failures are returned;
// lexical errors go to the reporter and scanning carries on.
func (s *Scanner) Scan(r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.ScanString(string(buf))
	return nil
}

func (s *Scanner) ScanString(src string) {
	c := source.NewCursor(s.file, src)
	for !c.AtEOF() {
		loc := c.Loc()
		rule, n, ok := s.lx.match(c)
		if !ok {
			s.resync(c, src)
			continue
		}
		text := c.Eat(n)
		if !rule.ignore {
			s.sink.Token(Token{Type: rule.tok, Text: text, Loc: loc})
		}
	}
	s.end = c.Loc()
}

// resync skips an unmatchable run of text up to the next position where some
// token matches, reporting it once.
func (s *Scanner) resync(c *source.Cursor, src string) {
	loc := c.Loc()
	start := c.Offset()
	c.EatRune()
	for !c.AtEOF() {
		if _, _, ok := s.lx.match(c); ok {
			break
		}
		c.EatRune()
	}
	s.errors++
	s.rep.Errorf(loc, "unexpected input %q", src[start:c.Offset()])
}

// EOF passes end of input on to the sink.
func (s *Scanner) EOF() {
	s.sink.EOF(s.end)
}

// Errors returns the number of lexical errors reported so far.
func (s *Scanner) Errors() int {
	return s.errors
}
