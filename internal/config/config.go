// Package config loads flashdeck settings from flag defaults, an optional
// YAML file, FLASHDECK_* environment variables and explicitly set flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FLASHDECK_"

// Config holds the runtime settings.
type Config struct {
	LogLevel     string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string        `koanf:"log_format" validate:"oneof=text json"`
	AdvanceDelay time.Duration `koanf:"advance_delay" validate:"gte=0,lte=10s"`
	Category     string        `koanf:"category"`
	NoSeed       bool          `koanf:"no_seed"`
	Color        bool          `koanf:"color"`
	Seed         []SeedCard    `koanf:"seed" validate:"dive"`
}

// SeedCard is a card listed under "seed" in the config file.
type SeedCard struct {
	Front      string `koanf:"front" validate:"required"`
	Back       string `koanf:"back" validate:"required"`
	Category   string `koanf:"category" validate:"required"`
	Difficulty string `koanf:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// Draft converts the seed entry into a card draft.
func (s SeedCard) Draft() domain.Draft {
	return domain.Draft{
		Front:      s.Front,
		Back:       s.Back,
		Category:   s.Category,
		Difficulty: domain.Difficulty(s.Difficulty),
	}
}

// Drafts returns the cards to seed the store with: nothing when seeding is
// disabled, the configured list when one is given, the starter deck otherwise.
func (c *Config) Drafts() []domain.Draft {
	if c.NoSeed {
		return nil
	}
	if c.Seed == nil {
		return StarterDeck()
	}
	drafts := make([]domain.Draft, 0, len(c.Seed))
	for _, s := range c.Seed {
		drafts = append(drafts, s.Draft())
	}
	return drafts
}

// StarterDeck is the deck a fresh session opens with.
func StarterDeck() []domain.Draft {
	return []domain.Draft{
		{
			Front:      "What is React?",
			Back:       "A JavaScript library for building user interfaces, particularly web applications.",
			Category:   "Programming",
			Difficulty: domain.Medium,
		},
		{
			Front:      "What is TypeScript?",
			Back:       "A programming language that builds on JavaScript by adding static type definitions.",
			Category:   "Programming",
			Difficulty: domain.Medium,
		},
		{
			Front:      "What is the capital of France?",
			Back:       "Paris",
			Category:   "Geography",
			Difficulty: domain.Easy,
		},
	}
}

// RegisterFlags adds the config flags and their defaults to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a YAML config file")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Duration("advance-delay", time.Second, "pause before moving to the next card after an answer")
	flags.String("category", domain.AllCategories, "category selected at start")
	flags.Bool("no-seed", false, "start with an empty deck")
	flags.Bool("color", true, "colorize terminal output")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the config from flags (registered with RegisterFlags and
// already parsed), the file named by --config and the environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s does not exist", path)
			}
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys nobody else set.
	fp := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
	})
	if err := k.Load(fp, nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps FLASHDECK_LOG_LEVEL to log_level.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
