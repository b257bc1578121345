package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iamarketings/Operator/internal/db"
	"github.com/iamarketings/Operator/internal/sample"
	"github.com/iamarketings/Operator/internal/simulator"
)

// ErrInvalidConfig is returned by Load when a value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

type APIKey struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
	Role string `yaml:"role"`
}

type RecordingConfig struct {
	BasePath string `yaml:"base_path"`
}

// ConsoleConfig drives pbxconsole and pbxctl.
type ConsoleConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	APIBaseURL string `yaml:"api_base_url"`
	APIKey     string `yaml:"api_key"`
	// RequestTimeout bounds each backend request; 0 disables the bound.
	RequestTimeout time.Duration    `yaml:"request_timeout"`
	SampleSeed     int64            `yaml:"sample_seed"`
	SampleSizes    sample.Sizes     `yaml:"sample_sizes"`
	Simulator      simulator.Params `yaml:"simulator"`
}

type Config struct {
	ListenAddr       string          `yaml:"listen_addr"`
	DBDSN            string          `yaml:"db_dsn"`
	DBPool           db.PoolOptions  `yaml:"db_pool"`
	MigrateOnStart   bool            `yaml:"migrate_on_start"`
	XMLCurlUser      string          `yaml:"xmlcurl_basic_user"`
	XMLCurlPass      string          `yaml:"xmlcurl_basic_pass"`
	CDRAuthorization string          `yaml:"cdr_auth_token"`
	APIKeys          []APIKey        `yaml:"api_keys"`
	Recordings       RecordingConfig `yaml:"recordings"`
	Console          ConsoleConfig   `yaml:"console"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		DBPool:     db.DefaultPoolOptions,
		Console: ConsoleConfig{
			ListenAddr:     ":8090",
			APIBaseURL:     "http://127.0.0.1:8080",
			RequestTimeout: 5 * time.Second,
			SampleSeed:     time.Now().UnixNano(),
			SampleSizes:    sample.DefaultSizes,
			Simulator:      simulator.DefaultParams,
		},
	}
}

// Load decodes path over Default, so keys absent from the file keep their default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.Console.ListenAddr == "" {
		cfg.Console.ListenAddr = ":8090"
	}
	if cfg.Console.Simulator.Interval <= 0 {
		cfg.Console.Simulator.Interval = simulator.DefaultParams.Interval
	}
	if err := cfg.Console.Simulator.Validate(); err != nil {
		return nil, fmt.Errorf("%w: simulator: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Console.SampleSizes.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}
