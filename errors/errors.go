package errors

import "errors"

// Inconceivable is panicked when code reaches a state it was built never to
// reach.
var Inconceivable = errors.New("inconceivable")

// ErrFrozen is panicked when a frozen grammar context is structurally
// modified.
var ErrFrozen = errors.New("grammar context is frozen")
