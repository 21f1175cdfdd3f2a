package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mcncl/mapdata/internal/config"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/logging"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to a YAML config file. Defaults to the nearest .mapdata.yml." short:"c" type:"path" env:"MAPDATA_CONFIG"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Workers int              `help:"Number of files processed in parallel (default: number of CPUs)." short:"w" env:"MAPDATA_WORKERS"`
	OnError string           `help:"What to do when a file fails: skip or abort." name:"on-error"`
	Pattern []string         `help:"Glob selecting input files relative to the source directory (repeatable)." short:"p"`
	Ver     kong.VersionFlag `help:"Show version information." short:"v" name:"version"`

	Compact CompactCmd `cmd:"" help:"Pack mesh arrays into base64 binary blobs and write a mirrored tree."`
	Types   TypesCmd   `cmd:"" help:"List the distinct object types and print a representative document."`
	Shaders ShadersCmd `cmd:"" help:"List every shader name referenced by the documents."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// VersionCmd prints the version
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(rt *Context) error {
	_, err := fmt.Fprintf(rt.Stdout, "mapdata version %s\n", Version)
	return err
}

func main() {
	// Values in a local .env feed the env-backed flags
	_ = godotenv.Load()

	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("mapdata"),
		kong.Description("Post-process dumped map-data JSON files"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("mapdata version %s", Version)},
	)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	rt, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: mapdata --help\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logging.New(rt.Stderr, rt.Debug))

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(rt); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		stop()
		os.Exit(1)
	}
}

// newContext loads the configuration with global flag overrides applied
func newContext() (*Context, error) {
	cfg, err := config.LoadConfigWithCLI(CLI.Config, config.Overrides{
		Patterns: CLI.Pattern,
		Workers:  CLI.Workers,
		OnError:  CLI.OnError,
		Debug:    CLI.Debug,
	})
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), nil)
	}

	return &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// commandConfig returns a copy of the runtime config with command flags applied
func (rt *Context) commandConfig(o config.Overrides) (*config.Config, error) {
	cfg := *rt.Config
	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error(), nil)
	}
	return &cfg, nil
}
