package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPath    = "pinforest.yaml"
	DefaultAPI     = "http://127.0.0.1:5001"
	DefaultDataDir = "~/.pinforest"

	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

type Config struct {
	API            string `yaml:"api"`
	DataDir        string `yaml:"dataDir"`
	DurableBackend string `yaml:"durableBackend"`
	PinType        string `yaml:"pinType"`
	RequestTimeout string `yaml:"requestTimeout"`
	ProviderLimit  int    `yaml:"providerLimit"`
	Workers        int    `yaml:"workers"`
	LogLevel       string `yaml:"logLevel"`
}

// Path returns the config file location from PINFOREST_CONFIG, falling back
// to DefaultPath.
func Path() string {
	if env := os.Getenv("PINFOREST_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads path if it exists, applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if env := os.Getenv("PINFOREST_API"); env != "" {
		config.API = env
	}

	config.applyDefaults()
	return config, config.Validate()
}

func (c *Config) applyDefaults() {
	if c.API == "" {
		c.API = DefaultAPI
	}

	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}

	if c.DurableBackend == "" {
		c.DurableBackend = BackendBadger
	}

	if c.PinType == "" {
		c.PinType = "all"
	}

	if c.RequestTimeout == "" {
		c.RequestTimeout = "30s"
	}

	if c.ProviderLimit == 0 {
		c.ProviderLimit = 20
	}

	if c.Workers == 0 {
		c.Workers = 8
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	switch c.DurableBackend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("unknown durableBackend %q (want %s or %s)", c.DurableBackend, BackendBadger, BackendSQLite)
	}

	switch c.PinType {
	case "all", "recursive", "direct", "indirect":
	default:
		return fmt.Errorf("unknown pinType %q", c.PinType)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Workers < 0 || c.ProviderLimit < 0 {
		return errors.New("workers and providerLimit must not be negative")
	}
	return nil
}

func (c Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout %q: %w", c.RequestTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("requestTimeout must be positive, got %s", d)
	}
	return d, nil
}

func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("invalid logLevel: %w", err)
	}
	return lvl, nil
}

// ExpandedDataDir resolves a leading ~ to the home directory.
func (c Config) ExpandedDataDir() (string, error) {
	dir := c.DataDir
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return dir, nil
}
