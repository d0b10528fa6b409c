package semantic

import (
	"fmt"
	"strings"

	"github.com/arr-ai/lmgen/source"
)

type Kind int

const (
	Unresolved Kind = iota
	AmbiguousName
	MissingStart
	InvalidPattern
	LeftRecursion
	NullableRepeat
	Unreachable
	BranchPointFound
)

func (k Kind) String() string {
	switch k {
	case Unresolved:
		return "Unresolved"
	case AmbiguousName:
		return "AmbiguousName"
	case MissingStart:
		return "MissingStart"
	case InvalidPattern:
		return "InvalidPattern"
	case LeftRecursion:
		return "LeftRecursion"
	case NullableRepeat:
		return "NullableRepeat"
	case Unreachable:
		return "Unreachable"
	case BranchPointFound:
		return "BranchPointFound"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is one finding. The message does not repeat the location.
type Error struct {
	Loc  source.Loc
	Kind Kind
	Msg  string
}

func (e Error) Error() string {
	if e.Loc.IsValid() {
		return e.Loc.String() + ": " + e.Msg
	}
	return e.Msg
}

// Errors is every error found in one analysis, in the order found.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Kinds lists the kind of each error, for tests and logs.
func (e Errors) Kinds() []Kind {
	out := make([]Kind, 0, len(e))
	for _, err := range e {
		out = append(out, err.Kind)
	}
	return out
}
