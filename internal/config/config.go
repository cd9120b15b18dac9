package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath      string     `env:"DB_PATH" envDefault:"data/animequiz.db"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL    string     `env:"REDIS_URL"`
	CatalogPath string     `env:"CATALOG_PATH"`

	Jikan Jikan `envPrefix:"JIKAN_"`
	Game  Game  `envPrefix:"GAME_"`
}

type Jikan struct {
	BaseURL     string        `env:"BASE_URL" envDefault:"https://api.jikan.moe/v4"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"3"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Retries     int           `env:"RETRIES" envDefault:"2"`
}

// Game holds the tunable rules of the quiz.
type Game struct {
	OptionsCount   int           `env:"OPTIONS_COUNT" envDefault:"4"`
	RoundTTL       time.Duration `env:"ROUND_TTL" envDefault:"120s"`
	StreakBonusXP  int           `env:"STREAK_BONUS_XP" envDefault:"2"`
	MaxStreakBonus int           `env:"MAX_STREAK_BONUS" envDefault:"20"`
	SpeedBonusTime time.Duration `env:"SPEED_BONUS_TIME" envDefault:"5s"`
	DailyBonusXP   int           `env:"DAILY_BONUS_XP" envDefault:"25"`
	Timezone       string        `env:"TIMEZONE" envDefault:"UTC"`

	loc *time.Location
}

// Location is the calendar used for daily claims. It is resolved from
// Timezone by Load and falls back to UTC.
func (g Game) Location() *time.Location {
	if g.loc == nil {
		return time.UTC
	}
	return g.loc
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Game.OptionsCount < 2 {
		return fmt.Errorf("GAME_OPTIONS_COUNT must be at least 2, got %d", c.Game.OptionsCount)
	}
	if c.Game.RoundTTL <= 0 {
		return fmt.Errorf("GAME_ROUND_TTL must be positive, got %s", c.Game.RoundTTL)
	}
	if c.Jikan.Concurrency < 1 {
		return fmt.Errorf("JIKAN_CONCURRENCY must be at least 1, got %d", c.Jikan.Concurrency)
	}
	loc, err := time.LoadLocation(c.Game.Timezone)
	if err != nil {
		return fmt.Errorf("GAME_TIMEZONE: %w", err)
	}
	c.Game.loc = loc
	return nil
}
