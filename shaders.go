package main

import (
	"context"
	"fmt"

	"github.com/mcncl/mapdata/internal/batch"
	"github.com/mcncl/mapdata/internal/config"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/formatter"
	"github.com/mcncl/mapdata/internal/parser"
	"github.com/mcncl/mapdata/internal/progress"
	"github.com/mcncl/mapdata/internal/shaders"
)

// ShadersCmd lists referenced shader names
type ShadersCmd struct {
	Src string `help:"Directory of dumped map-data JSON files." short:"s" type:"path" env:"MAPDATA_SRC"`
}

// Run executes the shaders command
func (c *ShadersCmd) Run(ctx context.Context, rt *Context) error {
	cfg, err := rt.commandConfig(config.Overrides{SourceDir: c.Src})
	if err != nil {
		return err
	}
	return runShaders(ctx, rt, cfg)
}

// collectShaders gathers one set per file and merges them once all workers
// are done
func collectShaders(ctx context.Context, rt *Context, cfg *config.Config) (shaders.Set, []batch.Failure, error) {
	files, err := batch.Discover(cfg.SourceDir, cfg.Patterns)
	if err != nil {
		return nil, nil, err
	}

	bar := progress.New(rt.Stderr, "shaders", len(files))
	summary, err := batch.Run(ctx, batch.Options{
		Workers:  cfg.Workers,
		Abort:    cfg.OnError == config.OnErrorAbort,
		Progress: bar,
	}, files, func(_ context.Context, rel string) (shaders.Set, error) {
		doc, err := parser.ParseDocument(cfg.SourceDir, rel)
		if err != nil {
			return nil, err
		}
		set := shaders.NewSet()
		shaders.CollectKey(doc.Root, cfg.Keys.Shader, set)
		return set, nil
	})
	bar.Finish()
	if err != nil {
		return nil, summary.Failures, err
	}

	all := shaders.NewSet()
	for _, result := range summary.Succeeded() {
		all.Merge(result.Value)
	}
	return all, summary.Failures, nil
}

func runShaders(ctx context.Context, rt *Context, cfg *config.Config) error {
	set, failures, err := collectShaders(ctx, rt, cfg)
	if ferr := formatter.NewFormatter(rt.Stderr).Failures(failures); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	if err := formatter.NewFormatter(rt.Stdout).Shaders(set.Sorted()); err != nil {
		return errors.NewIOError("failed to write shader names", err)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d file(s) failed: %w", len(failures), errors.ErrFilesFailed)
	}
	return nil
}
