package commands

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-environment defaults behind the CLI flags.
// Flags always win; the environment only moves the default.
type Settings struct {
	Config    string `env:"FLOWCAST_CONFIG" envDefault:"flowcast.yaml"`
	Portfolio string `env:"FLOWCAST_PORTFOLIO" envDefault:"portfolio.yaml"`
	LogLevel  string `env:"FLOWCAST_LOG_LEVEL" envDefault:"info"`
}

func loadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("reading environment: %w", err)
	}
	return s, nil
}
