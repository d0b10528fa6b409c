package source

import (
	"regexp"
	"unicode/utf8"
)

// Cursor walks a source text front to back. It keeps the line and column of
// its current position up to date as text is eaten, so reading the location
// is constant time.
type Cursor struct {
	src    string
	file   string
	offset int
	line   int
	col    int
}

func NewCursor(file, src string) *Cursor {
	return &Cursor{src: src, file: file, line: 1, col: 1}
}

// The byte offset of the cursor within the text.
func (c *Cursor) Offset() int {
	return c.offset
}

// Loc returns the location of the next unread byte.
func (c *Cursor) Loc() Loc {
	return Loc{File: c.file, Line: c.line, Col: c.col}
}

// Rest returns the unread text.
func (c *Cursor) Rest() string {
	return c.src[c.offset:]
}

func (c *Cursor) AtEOF() bool {
	return c.offset >= len(c.src)
}

// Eat advances the cursor past the next n bytes and returns them.
func (c *Cursor) Eat(n int) string {
	if rest := len(c.src) - c.offset; n > rest {
		n = rest
	}
	eaten := c.src[c.offset : c.offset+n]
	for _, r := range eaten {
		if r == '\n' {
			c.line++
			c.col = 1
		} else {
			c.col++
		}
	}
	c.offset += n
	return eaten
}

// EatRune advances the cursor past one rune and returns it.
func (c *Cursor) EatRune() rune {
	r, size := utf8.DecodeRuneInString(c.Rest())
	c.Eat(size)
	return r
}

// MatchRegexp returns the length of the match of re at the cursor, without
// advancing. re must be \A-anchored.
func (c *Cursor) MatchRegexp(re *regexp.Regexp) (int, bool) {
	loc := re.FindStringIndex(c.Rest())
	if loc == nil {
		return 0, false
	}
	if loc[0] != 0 {
		panic(`re not \A-anchored`)
	}
	return loc[1], true
}
