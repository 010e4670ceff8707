package main

import (
	"github.com/keshon/cmdhost/internal/command"
	"github.com/keshon/cmdhost/internal/docs"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	tmpl := pflag.String("template", "README.md.tmpl", "README template")
	out := pflag.String("out", "README.md", "output file")
	pflag.Parse()

	reg := cmd.New(cmd.HostFunc(func(cmd.Binding) error { return nil }), cmd.WithLogger(zerolog.Nop()))
	reg.Activate()
	opts := command.Options{Logger: zerolog.Nop()}
	command.Install(reg, opts)
	command.InstallBootstrap(reg, opts)

	if err := docs.UpdateReadme(reg, *tmpl, *out); err != nil {
		log.Fatal().Err(err).Msg("failed to update README")
	}
	log.Info().Str("out", *out).Int("commands", reg.Len()).Msg("README updated")
}
