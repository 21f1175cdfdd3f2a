package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/mapdata/internal/batch"
	"github.com/mcncl/mapdata/internal/compactor"
	"github.com/mcncl/mapdata/internal/config"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/formatter"
	"github.com/mcncl/mapdata/internal/logging"
	"github.com/mcncl/mapdata/internal/parser"
	"github.com/mcncl/mapdata/internal/progress"
	"github.com/mcncl/mapdata/internal/watch"
)

// CompactCmd packs mesh arrays and writes a mirrored output tree
type CompactCmd struct {
	Src   string `help:"Directory of dumped map-data JSON files." short:"s" type:"path" env:"MAPDATA_SRC"`
	Dst   string `help:"Directory the compacted files are written to." short:"o" type:"path" env:"MAPDATA_DST"`
	Watch bool   `help:"Keep running and re-compact files when they change."`
}

// Run executes the compact command
func (c *CompactCmd) Run(ctx context.Context, rt *Context) error {
	cfg, err := rt.commandConfig(config.Overrides{SourceDir: c.Src, OutputDir: c.Dst})
	if err != nil {
		return err
	}
	return runCompact(ctx, rt, cfg, c.Watch)
}

// runCompact compacts every matching file, then optionally keeps watching
func runCompact(ctx context.Context, rt *Context, cfg *config.Config, watchMode bool) error {
	logger := logging.FromContext(ctx)

	if err := checkDistinctDirs(cfg.SourceDir, cfg.OutputDir); err != nil {
		return err
	}

	// 1. Find the input files
	files, err := batch.Discover(cfg.SourceDir, cfg.Patterns)
	if err != nil {
		return err
	}

	// 2. Make sure the output root exists before any worker starts
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create output directory '%s'", cfg.OutputDir), err)
	}

	// 3. Compact in parallel
	comp := compactor.NewWithKeys(cfg.Keys.Mesh, cfg.Keys.Color)
	compactFile := func(_ context.Context, rel string) (struct{}, error) {
		return struct{}{}, compactOne(comp, cfg, rel)
	}

	bar := progress.New(rt.Stderr, "compact", len(files))
	summary, err := batch.Run(ctx, batch.Options{
		Workers:  cfg.Workers,
		Abort:    cfg.OnError == config.OnErrorAbort,
		Progress: bar,
	}, files, compactFile)
	bar.Finish()

	if summary != nil {
		logger.Info("compaction finished",
			"files", len(files),
			"written", len(summary.Succeeded()),
			"failed", len(summary.Failures),
			"output", cfg.OutputDir,
		)
		if ferr := formatter.NewFormatter(rt.Stderr).Failures(summary.Failures); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return err
	}

	// 4. Watch for changes if requested
	if watchMode {
		return watchCompact(ctx, comp, cfg)
	}

	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d of %d file(s) failed: %w", len(summary.Failures), len(files), errors.ErrFilesFailed)
	}
	return nil
}

// compactOne reads, packs and writes a single file
func compactOne(comp *compactor.Compactor, cfg *config.Config, rel string) error {
	doc, err := parser.ParseDocument(cfg.SourceDir, rel)
	if err != nil {
		return err
	}
	packed, err := comp.ConvertJSON(doc.Root)
	if err != nil {
		return err
	}
	return parser.WriteFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)), packed)
}

func watchCompact(ctx context.Context, comp *compactor.Compactor, cfg *config.Config) error {
	logger := logging.FromContext(ctx)

	w, err := watch.New(cfg.SourceDir, cfg.Patterns)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	logger.Info("watching for changes", "dir", cfg.SourceDir)
	return w.Run(ctx, func(_ context.Context, rel string) error {
		return compactOne(comp, cfg, rel)
	})
}

// checkDistinctDirs rejects an output directory equal to or inside the source
// directory, which would make compacted files inputs of the next run
func checkDistinctDirs(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid source directory '%s'", src), err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid output directory '%s'", dst), err)
	}
	if absDst == absSrc || strings.HasPrefix(absDst, absSrc+string(filepath.Separator)) {
		return errors.NewConfigError(fmt.Sprintf("output directory '%s' must not be inside source directory '%s'", dst, src), nil)
	}
	return nil
}
