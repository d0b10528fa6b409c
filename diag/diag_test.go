package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arr-ai/lmgen/source"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := New("lmgen", &buf)
	d.Errorf(LexicalError, source.At("g.lm", 3, 14), "unexpected character %q", '$')
	d.Warningf(source.At("g.lm", 1, 1), "definition %q is unreachable", "x")
	d.ProgramErrorf(IOError, "could not open %s for reading", "g.lm")
	d.Errorf(SemanticError, source.Loc{File: "g.lm"}, "no start definition")

	assert.Equal(t,
		"error: g.lm:3:14: unexpected character '$'\n"+
			"warning: g.lm:1:1: definition \"x\" is unreachable\n"+
			"error: lmgen: could not open g.lm for reading\n"+
			"error: g.lm: no start definition\n",
		buf.String())
}

func TestCountersAreMonotone(t *testing.T) {
	t.Parallel()

	d := New("lmgen", nil)
	assert.True(t, d.OK())

	last := 0
	for i, kind := range []Kind{UsageError, IOError, LexicalError, SyntaxError, SemanticError} {
		d.Errorf(kind, source.Loc{}, "e%d", i)
		d.Warningf(source.Loc{}, "w%d", i)
		assert.Greater(t, d.ErrorCount(), last)
		last = d.ErrorCount()
	}
	assert.Equal(t, 5, d.ErrorCount())
	assert.Equal(t, 5, d.WarningCount())
	assert.False(t, d.OK())
	assert.Equal(t, 1, d.Count(LexicalError))
	assert.Len(t, d.All(), 10)
}

func TestReporter(t *testing.T) {
	t.Parallel()

	d := New("lmgen", nil)
	r := d.For(SyntaxError)
	r.Errorf(source.At("in", 1, 2), "unexpected %s", "']'")

	all := d.All()
	if assert.Len(t, all, 1) {
		assert.Equal(t, SyntaxError, all[0].Kind)
		assert.Equal(t, "error: in:1:2: unexpected ']'", all[0].String())
	}
}

func TestWarningKindIsNotAnError(t *testing.T) {
	t.Parallel()

	d := New("lmgen", nil)
	d.Errorf(Warning, source.Loc{}, "x")
	assert.Equal(t, 1, d.ErrorCount())
	assert.Equal(t, 1, d.Count(SemanticError))
}
