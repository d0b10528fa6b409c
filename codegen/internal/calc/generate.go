// Package calc is the recognizer generated from calc.lm. It is checked in so
// that the generated source is compiled and exercised by the build.
package calc

//go:generate go run github.com/arr-ai/lmgen -package calc -o calc.go calc.lm
