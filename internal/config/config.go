package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven part of the bridge configuration.
// Paths and listen addresses stay on flags; anything a deployment or user
// would override lives here.
type Config struct {
	TurtleBaseURL   string        `env:"TURTLE_BASE_URL" envDefault:"https://scout.turtle.gg"`
	TurtleTrainPath string        `env:"TURTLE_TRAIN_PATH" envDefault:"api/v1/scout"`
	HTTPTimeout     time.Duration `env:"TURTLE_HTTP_TIMEOUT" envDefault:"10s"`
	PlayerTag       string        `env:"TURTLE_PLAYER_TAG"`
	DefaultPatch    string        `env:"TURTLE_DEFAULT_PATCH" envDefault:"Dawntrail"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
