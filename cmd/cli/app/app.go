// Package app holds the configuration and the engine shared by the CLI commands.
package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/gumshoe/internal/ai"
	"github.com/myrjola/gumshoe/internal/envstruct"
	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/game"
	"github.com/myrjola/gumshoe/internal/logging"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/myrjola/gumshoe/internal/progression"
	"github.com/myrjola/gumshoe/internal/rules"
	"github.com/spf13/cobra"
)

var ErrNoActiveCase = errors.New("no active case, open one with `gumshoe case new`").Wrap(models.ErrNotFound)

type Config struct {
	SQLiteURL     string `env:"SQLITE_URL" envDefault:"./gumshoe.sqlite"`
	RulesFile     string `env:"RULES_FILE" envDefault:""`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:""`
	// ClueTimeout overrides the rules file when positive.
	ClueTimeout time.Duration `env:"CLUE_TIMEOUT" envDefault:"0s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"warn"`
	LogJSON     bool          `env:"LOG_JSON" envDefault:"false"`
	Player      string        `env:"PLAYER" envDefault:"detective"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return Config{}, errors.Wrap(err, "populate config")
	}
	return cfg, nil
}

// Session is one CLI invocation with an open engine.
type Session struct {
	Game   *game.Game
	Config Config
	Player string
	Logger *slog.Logger
}

// Run opens the engine for cmd, runs fn and closes the engine again.
func Run(cmd *cobra.Command, fn func(ctx context.Context, s *Session) error) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if player, _ := cmd.Flags().GetString("player"); player != "" {
		cfg.Player = player
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)
	ctx := logging.WithAttrs(cmd.Context(), slog.String("player_id", cfg.Player))

	r, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return errors.Wrap(err, "load rules")
	}
	if cfg.ClueTimeout > 0 {
		r.Investigation.ClueTimeout = cfg.ClueTimeout
	}

	var writer progression.ClueWriter = ai.Offline{}
	if cfg.OpenAIAPIKey != "" {
		writer = ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
	} else {
		logger.LogAttrs(ctx, slog.LevelDebug, "OPENAI_API_KEY not set, writing clues from templates")
	}

	g, err := game.New(ctx, game.Options{
		SQLiteURL: cfg.SQLiteURL,
		Rules:     r,
		Writer:    writer,
		Rand:      nil,
		Now:       time.Now,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "start game")
	}
	defer func() {
		if closeErr := g.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "error closing game", errors.SlogError(closeErr))
		}
	}()

	return fn(ctx, &Session{Game: g, Config: cfg, Player: cfg.Player, Logger: logger})
}

// CaseID returns the explicitly given case or the player's active one.
func (s *Session) CaseID(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	c, found, err := s.Game.Cases.Active(ctx, s.Player)
	if err != nil {
		return "", errors.Wrap(err, "find active case")
	}
	if !found {
		return "", ErrNoActiveCase
	}
	return c.ID, nil
}
