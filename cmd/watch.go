package cmd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/arr-ai/lmgen/compile"
	"github.com/arr-ai/lmgen/diag"
)

// watch compiles cfg, then compiles it again whenever a grammar file in the
// input's directory or an include directory changes, until ctx is done.
// Each compilation reports to stderr independently.
func watch(ctx context.Context, cfg compile.Config, stderr io.Writer, logger *logrus.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dirs := append([]string{filepath.Dir(cfg.Input)}, cfg.IncludePaths...)
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	ext := filepath.Ext(cfg.Input)
	output := filepath.Clean(cfg.OutputPath())
	log := logger.WithField("input", cfg.Input)

	run := func() {
		d := diag.New(program, stderr)
		if _, err := compile.New(cfg, d, logger).Run(ctx); err != nil {
			log.WithField("errors", d.ErrorCount()).Info("compilation failed")
			return
		}
		log.Info("compiled")
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch")
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, ext, output) {
				continue
			}
			log.WithField("event", event.String()).Debug("change")
			run()
		}
	}
}

func relevant(event fsnotify.Event, ext, output string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name != output && filepath.Ext(name) == ext
}
