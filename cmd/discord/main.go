package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/cmdhost/internal/command"
	"github.com/keshon/cmdhost/internal/config"
	"github.com/keshon/cmdhost/internal/console"
	"github.com/keshon/cmdhost/internal/discord"
	"github.com/keshon/cmdhost/internal/logging"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/keshon/cmdhost/pkg/retrylimit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	withConsole := pflag.Bool("console", false, "also accept commands on stdin")
	pflag.Parse()

	logger := logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Output: os.Stderr,
		Pretty: cfg.LogPretty,
		File:   cfg.LogFile,
	})
	if err := cfg.ValidateDiscord(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().Msg("starting Discord bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := discord.Connect(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	bot := discord.New(session, discord.Options{
		Prefix:    cfg.Prefix,
		GuildID:   cfg.GuildID,
		SyncSlash: cfg.SyncSlash,
		Logger:    logger,
		Retry:     retrylimit.DefaultConfig(),
	})

	cmdOpts := command.Options{Logger: logger, RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst}
	reg := cmd.New(bot, cmd.WithLogger(logger))
	reg.Activate()
	command.Install(reg, cmdOpts)
	command.InstallBootstrap(reg, cmdOpts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx, session) })

	if *withConsole {
		con := console.New(os.Stdin, os.Stdout, console.WithLogger(logger))
		conReg := cmd.New(con, cmd.WithLogger(logger))
		conReg.Activate()
		command.Install(conReg, command.Options{Logger: logger})
		command.InstallBootstrap(conReg, command.Options{Logger: logger})
		g.Go(func() error {
			err := con.Run(gctx)
			cancel()
			return err
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			cancel()
		case <-gctx.Done():
		}
	}()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Discord bot error")
		os.Exit(1)
	}
	log.Info().Msg("Discord bot exited cleanly")
}
