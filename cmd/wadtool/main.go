// Command wadtool inspects WAD files and converts their maps to UDMF.
//
//	wadtool [-config FILE] [-log-level LEVEL] list FILE...
//	wadtool maps FILE...
//	wadtool convert IN MAP OUT
//	wadtool sectors IN MAP
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stuarthighley/wadmap/internal/config"
	"github.com/stuarthighley/wadmap/wad"
)

var errUsage = errors.New("usage")

const usageText = `usage: wadtool [options] COMMAND ARGS

Commands:
  list FILE...         lumps of each file with offset, size and checksum
  maps FILE...         maps of each file and their storage format
  convert IN MAP OUT   write MAP from IN to a new WAD OUT as UDMF
  sectors IN MAP       print the sector loops of MAP

Options:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("wadtool failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wadtool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error (overrides config)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load config
	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	// Configure slog
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	wad.SetLogger(logger)
	defer wad.SetLogger(nil)

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	logger.Debug("Running command", "command", cmd, "args", rest, "workers", cfg.WorkerCount())

	switch cmd {
	case "list":
		return listLumps(ctx, cfg, rest, stdout)
	case "maps":
		return listMaps(ctx, cfg, rest, stdout)
	case "convert":
		return convert(cfg, rest, stdout)
	case "sectors":
		return sectors(rest, stdout)
	}
	fs.Usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}
