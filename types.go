package main

import (
	"context"
	"fmt"

	"github.com/mcncl/mapdata/internal/batch"
	"github.com/mcncl/mapdata/internal/config"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/formatter"
	"github.com/mcncl/mapdata/internal/logging"
	"github.com/mcncl/mapdata/internal/models"
	"github.com/mcncl/mapdata/internal/parser"
	"github.com/mcncl/mapdata/internal/progress"
	"github.com/mcncl/mapdata/internal/typelister"
)

// TypesCmd lists distinct object types
type TypesCmd struct {
	Src     string `help:"Directory of dumped map-data JSON files." short:"s" type:"path" env:"MAPDATA_SRC"`
	Dump    string `help:"Type whose representative document is printed in full."`
	DumpDir string `help:"Write every representative document to this directory." name:"dump-dir" type:"path"`
}

// Run executes the types command
func (c *TypesCmd) Run(ctx context.Context, rt *Context) error {
	cfg, err := rt.commandConfig(config.Overrides{SourceDir: c.Src, DumpType: c.Dump})
	if err != nil {
		return err
	}
	return runTypes(ctx, rt, cfg, c.DumpDir)
}

// collectTypes parses every file and folds the documents into a registry in
// sorted path order, so the representative of each type is deterministic
func collectTypes(ctx context.Context, rt *Context, cfg *config.Config) (*typelister.Registry, []batch.Failure, error) {
	files, err := batch.Discover(cfg.SourceDir, cfg.Patterns)
	if err != nil {
		return nil, nil, err
	}

	bar := progress.New(rt.Stderr, "types", len(files))
	summary, err := batch.Run(ctx, batch.Options{
		Workers:  cfg.Workers,
		Abort:    cfg.OnError == config.OnErrorAbort,
		Progress: bar,
	}, files, func(_ context.Context, rel string) (models.Document, error) {
		return parser.ParseDocument(cfg.SourceDir, rel)
	})
	bar.Finish()
	if err != nil {
		return nil, summary.Failures, err
	}

	registry := typelister.NewRegistryWithKey(cfg.Keys.Type)
	failures := summary.Failures
	for _, result := range summary.Succeeded() {
		if _, err := registry.Add(result.Value); err != nil {
			logging.FromContext(ctx).Warn("skipping document", "file", result.Path, "error", err)
			failures = append(failures, batch.Failure{Path: result.Path, Err: err})
			if cfg.OnError == config.OnErrorAbort {
				return nil, failures, err
			}
		}
	}
	return registry, failures, nil
}

func runTypes(ctx context.Context, rt *Context, cfg *config.Config, dumpDir string) error {
	logger := logging.FromContext(ctx)

	registry, failures, err := collectTypes(ctx, rt, cfg)
	errOut := formatter.NewFormatter(rt.Stderr)
	if ferr := errOut.Failures(failures); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	out := formatter.NewFormatter(rt.Stdout)
	if err := out.TypeNames(registry.Names()); err != nil {
		return errors.NewIOError("failed to write type names", err)
	}

	for _, name := range registry.Unregistered(cfg.Types.Registered) {
		logger.Warn("type is not registered with the viewer", "type", name)
	}

	if cfg.Types.Dump != "" {
		entry, ok := registry.Get(cfg.Types.Dump)
		if ok {
			if err := out.Representative(entry); err != nil {
				return errors.NewIOError("failed to write representative document", err)
			}
		} else {
			logger.Warn("no document of the requested type", "type", cfg.Types.Dump)
		}
	}

	if dumpDir != "" {
		written, err := formatter.WriteRepresentatives(dumpDir, registry.Entries())
		if err != nil {
			return err
		}
		logger.Info("wrote representative documents", "dir", dumpDir, "count", len(written))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d file(s) failed: %w", len(failures), errors.ErrFilesFailed)
	}
	return nil
}
