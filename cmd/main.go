package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/arr-ai/lmgen/compile"
	"github.com/arr-ai/lmgen/diag"
	"github.com/arr-ai/lmgen/runtime"
)

const program = "lmgen"

type VersionTags struct {
	Version   string
	GitCommit string
	BuildDate string
	BuildOS   string
}

// String normalises the version when it is a semantic version.
func (v VersionTags) String() string {
	version := v.Version
	if sv, err := semver.NewVersion(version); err == nil {
		version = sv.String()
	}
	return fmt.Sprintf("%s (commit %s, built %s on %s, tables v%s)",
		version, v.GitCommit, v.BuildDate, v.BuildOS, runtime.FormatVersion)
}

// errReported means the failure has already been reported as a diagnostic.
var errReported = errors.New("reported")

func init() {
	// -v is verbose and -h, -H and -? all ask for help.
	cli.HelpFlag = cli.BoolFlag{Name: "help, h, H, ?", Usage: "show help"}
	cli.VersionFlag = cli.BoolFlag{Name: "version", Usage: "print the version"}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s version %s\n", c.App.Name, c.App.Version)
	}
}

func Main(info VersionTags) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, os.Args, os.Stdout, os.Stderr, info)
	stop()
	os.Exit(code)
}

// Run runs the command line args and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, info VersionTags) int {
	d := diag.New(program, stderr)
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)

	var cfg compile.Config
	var watchMode bool

	app := cli.NewApp()
	app.Name = program
	app.Usage = "compile a grammar definition into a recognizer"
	app.UsageText = program + " [options] file"
	app.Version = info.String()
	app.Writer = stdout
	app.ErrWriter = stderr
	app.UseShortOptionHandling = true
	app.Flags = []cli.Flag{
		cli.StringSliceFlag{
			Name:  "o",
			Usage: "write the output to `FILE`",
		},
		cli.StringSliceFlag{
			Name:  "I",
			Usage: "search `DIR` for included files (repeatable)",
		},
		cli.BoolFlag{
			Name:        "v",
			Usage:       "verbose logging",
			Destination: &cfg.Verbose,
		},
		cli.BoolFlag{
			Name:        "l",
			Usage:       "generated parser logs its steps",
			Destination: &cfg.Logging,
		},
		cli.BoolFlag{
			Name:        "i",
			Usage:       "report branch points",
			Destination: &cfg.BranchPoints,
		},
		cli.BoolFlag{
			Name:        "s",
			Usage:       "print grammar statistics",
			Destination: &cfg.Statistics,
		},
		cli.BoolFlag{
			Name:        "V",
			Usage:       "write a Graphviz graph of the grammar instead of Go source",
			Destination: &cfg.Graph,
		},
		cli.StringFlag{
			Name:        "package",
			Usage:       "package `NAME` of the generated Go source",
			Value:       "grammar",
			Destination: &cfg.Package,
		},
		cli.StringFlag{
			Name:        "start",
			Usage:       "start `RULE` of the grammar",
			Value:       "start",
			Destination: &cfg.Start,
		},
		cli.BoolFlag{
			Name:        "w",
			Usage:       "recompile whenever the input changes",
			Destination: &watchMode,
		},
	}
	app.OnUsageError = func(c *cli.Context, err error, _ bool) error {
		msg := err.Error()
		if flag := strings.TrimPrefix(msg, "flag provided but not defined: "); flag != msg {
			msg = flag + " is an invalid argument"
		}
		d.ProgramErrorf(diag.UsageError, "%s", msg)
		return errReported
	}
	app.Action = func(c *cli.Context) error {
		if !parseArgs(c, &cfg, d) {
			return errReported
		}
		if cfg.Verbose {
			logger.SetLevel(logrus.TraceLevel)
		}
		cfg.CommandLine = strings.Join(args[1:], " ")
		cfg.Stdout = stdout
		if watchMode {
			return watch(ctx, cfg, stderr, logger)
		}
		_, err := compile.New(cfg, d, logger).Run(ctx)
		return err
	}

	err := app.Run(args)
	switch {
	case err == nil, errors.Is(err, errReported), errors.Is(err, compile.ErrFailed):
	case errors.Is(err, context.Canceled):
	default:
		d.ProgramErrorf(diag.IOError, "%s", err)
	}
	if !d.OK() {
		return 1
	}
	return 0
}

// parseArgs checks the input and output names and fills them into cfg.
func parseArgs(c *cli.Context, cfg *compile.Config, d *diag.Diagnostics) bool {
	switch outputs := c.StringSlice("o"); {
	case len(outputs) > 1:
		d.ProgramErrorf(diag.UsageError, "more than one output file name was given")
	case len(outputs) == 1 && outputs[0] == "":
		d.ProgramErrorf(diag.UsageError, "a zero length output file name was given")
	case len(outputs) == 1:
		cfg.Output = outputs[0]
	}

	switch inputs := c.Args(); {
	case len(inputs) == 0:
		d.ProgramErrorf(diag.UsageError, "no input file given")
	case len(inputs) > 1:
		d.ProgramErrorf(diag.UsageError, "more than one input file name was given")
	case inputs[0] == "":
		d.ProgramErrorf(diag.UsageError, "a zero length input file name was given")
	default:
		cfg.Input = inputs[0]
	}

	for _, dir := range c.StringSlice("I") {
		if dir == "" {
			d.ProgramErrorf(diag.UsageError, "a zero length include path was given")
			continue
		}
		cfg.IncludePaths = append(cfg.IncludePaths, dir)
	}
	return d.OK()
}
