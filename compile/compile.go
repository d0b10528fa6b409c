// Package compile runs one grammar compilation from input file to artifact.
//
// All state of a compilation lives in a Compilation value; any number of them
// may run in one process.
package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"

	"github.com/arr-ai/lmgen/codegen"
	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/grammar"
	"github.com/arr-ai/lmgen/loader"
	"github.com/arr-ai/lmgen/runtime"
	"github.com/arr-ai/lmgen/semantic"
	"github.com/arr-ai/lmgen/source"
)

// ErrFailed is returned by Run when any error was reported.
var ErrFailed = errors.New("compilation failed")

type Config struct {
	Input        string
	Output       string
	IncludePaths []string
	Verbose      bool
	// Logging makes the generated parser log its steps.
	Logging bool
	// BranchPoints reports alternatives that share a prefix.
	BranchPoints bool
	Statistics   bool
	// Graph writes a Graphviz graph instead of Go source.
	Graph   bool
	Start   string
	Package string
	// CommandLine is recorded in generated files.
	CommandLine string
	// Stdout receives statistics and, unless Output is set, graphs.
	Stdout io.Writer
}

// OutputPath is where the artifact goes. Empty means Stdout.
func (cfg Config) OutputPath() string {
	switch {
	case cfg.Output != "":
		return cfg.Output
	case cfg.Graph:
		return ""
	}
	return strings.TrimSuffix(cfg.Input, filepath.Ext(cfg.Input)) + ".go"
}

type Compilation struct {
	Config Config
	Diag   *diag.Diagnostics
	Ctx    *grammar.Context
	log    *logrus.Entry
	create func(name string) (io.WriteCloser, error)
}

type Result struct {
	Model   *semantic.Model
	Program *runtime.Program
	Stats   codegen.Statistics
	// Output is the path written, or empty if the artifact went to Stdout.
	Output string
}

func New(cfg Config, d *diag.Diagnostics, logger *logrus.Logger) *Compilation {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	return &Compilation{
		Config: cfg,
		Diag:   d,
		Ctx:    grammar.New(),
		log:    logger.WithField("input", cfg.Input),
		create: func(name string) (io.WriteCloser, error) { return os.Create(name) },
	}
}

// gate reports whether the pipeline may go on past phase.
func (c *Compilation) gate(phase string) bool {
	c.log.WithFields(logrus.Fields{
		"phase":    phase,
		"errors":   c.Diag.ErrorCount(),
		"warnings": c.Diag.WarningCount(),
	}).Debug("gate")
	return c.Diag.OK()
}

// Run executes the pipeline. It stops at the first phase that ends with
// errors recorded; the returned error is then ErrFailed, and the details are
// in Diag.
func (c *Compilation) Run(ctx context.Context) (*Result, error) {
	cfg := c.Config
	output := cfg.OutputPath()
	if c.samePath(cfg.Input, output) {
		c.Diag.ProgramErrorf(diag.UsageError, "output file %q is the same as the input file", output)
		return nil, ErrFailed
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := loader.Load(loader.Config{
		Input:        cfg.Input,
		IncludePaths: cfg.IncludePaths,
		Logger:       c.log.WithField("phase", "load"),
	}, c.Ctx, c.Diag); err != nil || !c.gate("load") {
		return nil, ErrFailed
	}

	c.Ctx.Freeze()
	if c.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		c.log.WithField("phase", "load").Trace(litter.Sdump(c.Ctx.Snapshot()))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := semantic.Analyze(c.Ctx, semantic.Options{Start: cfg.Start, BranchPoints: cfg.BranchPoints})
	var errs semantic.Errors
	switch {
	case errors.As(err, &errs):
		for _, e := range errs {
			c.Diag.Errorf(diag.SemanticError, c.locate(e.Loc), "%s", e.Msg)
		}
	case err != nil:
		panic(err)
	}
	for _, w := range m.Warnings {
		c.Diag.Warningf(c.locate(w.Loc), "%s", w.Msg)
	}
	if !c.gate("analyse") {
		return nil, ErrFailed
	}

	result := &Result{
		Model:   m,
		Program: codegen.Lower(m, codegen.Options{Logging: cfg.Logging}),
		Stats:   codegen.Stats(m),
		Output:  output,
	}
	if cfg.Statistics {
		fmt.Fprint(cfg.Stdout, result.Stats)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.generate(output, m); err != nil {
		return nil, ErrFailed
	}
	c.gate("generate")
	return result, nil
}

// locate fills in the input file for findings without a position.
func (c *Compilation) locate(loc source.Loc) source.Loc {
	if loc.File == "" {
		loc.File = c.Config.Input
	}
	return loc
}

func (c *Compilation) samePath(input, output string) bool {
	if output == "" {
		return false
	}
	if filepath.Clean(input) == filepath.Clean(output) {
		return true
	}
	a, errA := os.Stat(input)
	b, errB := os.Stat(output)
	return errA == nil && errB == nil && os.SameFile(a, b)
}

func (c *Compilation) write(w io.Writer, m *semantic.Model) error {
	if c.Config.Graph {
		return codegen.WriteDotFile(w, m)
	}
	return codegen.GenerateOutput(w, m, codegen.Options{
		Package:     c.Config.Package,
		CommandLine: c.Config.CommandLine,
		Logging:     c.Config.Logging,
	})
}

func (c *Compilation) generate(output string, m *semantic.Model) error {
	log := c.log.WithFields(logrus.Fields{"phase": "generate", "output": output})
	if output == "" {
		if err := c.write(c.Config.Stdout, m); err != nil {
			c.Diag.ProgramErrorf(diag.IOError, "writing output: %s", err)
			return err
		}
		return nil
	}

	f, err := c.create(output)
	if err != nil {
		c.Diag.ProgramErrorf(diag.IOError, "could not open %s for writing", output)
		return err
	}
	werr := c.write(f, m)
	cerr := f.Close()
	switch {
	case werr != nil:
		c.Diag.ProgramErrorf(diag.IOError, "writing %s: %s", output, werr)
	case cerr != nil:
		c.Diag.ProgramErrorf(diag.IOError, "closing %s: %s", output, cerr)
	default:
		log.Debug("written")
		return nil
	}
	// Never leave a partial artifact behind.
	os.Remove(output)
	if werr != nil {
		return werr
	}
	return cerr
}
