package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/cmdhost/internal/command"
	"github.com/keshon/cmdhost/internal/config"
	"github.com/keshon/cmdhost/internal/console"
	"github.com/keshon/cmdhost/internal/logging"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level := pflag.String("log-level", cfg.LogLevel, "minimum log level (debug, info, warn, error)")
	noColor := pflag.Bool("no-color", false, "write replies without colour")
	pflag.Parse()

	logger := logging.Init(logging.Config{
		Level:  logging.ParseLevel(*level),
		Output: os.Stderr,
		Pretty: cfg.LogPretty,
		File:   cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []console.Option
	opts = append(opts, console.WithLogger(logger))
	if *noColor {
		opts = append(opts, console.WithoutColor())
	}
	con := console.New(os.Stdin, os.Stdout, opts...)

	reg := cmd.New(con, cmd.WithLogger(logger))
	cmdOpts := command.Options{Logger: logger, RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst}

	// Game commands are constructed while the registry is still inactive and
	// stay pending; the register command binds them once it runs.
	command.Install(reg, cmdOpts)
	reg.Activate()
	command.InstallBootstrap(reg, cmdOpts)
	con.Execute("register")

	log.Info().Strs("commands", con.Names()).Msg("console ready")
	if err := con.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("console stopped")
		os.Exit(1)
	}
}
