package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}
}

// ErrNoToken is returned by ValidateDiscord when DISCORD_TOKEN is missing.
var ErrNoToken = errors.New("DISCORD_TOKEN is not set")

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"DISCORD_GUILD_ID"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!"`
	SyncSlash    bool   `env:"SYNC_SLASH_COMMANDS" envDefault:"true"`

	// Per-sender invocation budget; RateLimit is in commands per second.
	RateLimit float64 `env:"COMMAND_RATE_LIMIT" envDefault:"2"`
	RateBurst int     `env:"COMMAND_RATE_BURST" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
	LogFile   string `env:"LOG_FILE"`
}

// New reads the configuration from the environment (and .env, loaded at init).
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}
	return &cfg, nil
}

// ValidateDiscord checks what the Discord host needs on top of the defaults.
func (c *Config) ValidateDiscord() error {
	if c.DiscordToken == "" {
		return ErrNoToken
	}
	return nil
}
