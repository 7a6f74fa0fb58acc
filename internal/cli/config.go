package cli

import (
	"flag"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/isdelr/placeit-be/internal/session"
)

// Config holds the CLI settings. Environment variables are read first and
// command-line flags override them.
type Config struct {
	Server      string        `envconfig:"SERVER" default:"http://localhost:5000"`
	SessionFile string        `envconfig:"SESSION_FILE"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"warn"`
}

// LoadConfig reads PLACEIT_* variables and then the global flags in args.
// It returns the arguments left after the flags.
func LoadConfig(args []string, stderr io.Writer) (*Config, []string, error) {
	var cfg Config
	if err := envconfig.Process("placeit", &cfg); err != nil {
		return nil, nil, err
	}

	fs := flag.NewFlagSet("placeit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Server, "server", cfg.Server, "placeit server base URL")
	fs.StringVar(&cfg.SessionFile, "session", cfg.SessionFile, "session file path")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if cfg.SessionFile == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		cfg.SessionFile = path
	}
	return &cfg, fs.Args(), nil
}
