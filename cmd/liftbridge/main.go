// Command liftbridge imports, merges and exports LIFT lexicons.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/sillsdev/liftbridge/core/sqlite"
	"github.com/sillsdev/liftbridge/internal/config"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/progress"
)

const version = "0.1.0"

// Globals are the flags every command accepts. Flags given on the command
// line override the configuration file.
type Globals struct {
	Config       string `name:"config" short:"c" help:"Configuration file" type:"path"`
	LogLevel     string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat    string `name:"log-format" help:"Log format (text, json)"`
	ProgressAddr string `name:"progress-addr" help:"Serve live progress over WebSocket at this address"`

	cfg *config.Config
}

// CLI defines the command-line interface.
var CLI struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Import a LIFT file into an empty lexicon and report problems"`
	Merge   MergeCmd   `cmd:"" help:"Merge a LIFT file into a base lexicon and export the result"`
	Export  ExportCmd  `cmd:"" help:"Import a LIFT file and write it back out in canonical form"`
	Feature FeatureCmd `cmd:"" help:"Parse a feature-structure expression against a feature system"`
	Reports ReportsCmd `cmd:"" help:"Read the import log"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// setup loads the configuration and installs the logger.
func (g *Globals) setup() error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.ProgressAddr != "" {
		cfg.Progress.Addr = g.ProgressAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))
	g.cfg = cfg
	return nil
}

// sink returns the progress sink for an operation. When a progress address
// is configured the hub is served until ctx is done.
func (g *Globals) sink(ctx context.Context, operation string) progress.Sink {
	logSink := progress.NewLogSink(logging.GetLogger(), 100)
	if g.cfg == nil || g.cfg.Progress.Addr == "" {
		return logSink
	}
	hub := progress.NewHub(operation)
	go hub.Run(ctx)
	go func() {
		if err := progress.Serve(ctx, g.cfg.Progress.Addr, hub); err != nil {
			logging.Error("progress server failed", "addr", g.cfg.Progress.Addr, "error", err)
		}
	}()
	logging.Info("serving progress", "addr", g.cfg.Progress.Addr, "path", "/progress")
	return progress.Multi{logSink, hub}
}

// VersionCmd prints version information.
type VersionCmd struct {
	Verbose bool `short:"v" help:"Also print the SQLite driver used by the import log"`
}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "liftbridge version %s\n", version)
	if c.Verbose {
		info := sqlite.GetInfo()
		fmt.Fprintf(stdout, "sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("liftbridge"),
		kong.Description("LIFT lexicon import, merge and export"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx.BindTo(runCtx, (*context.Context)(nil))
	if ctx.Command() != "version" {
		ctx.FatalIfErrorf(CLI.Globals.setup())
	}
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
