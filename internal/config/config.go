package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// EnvPrefix is the prefix of environment variable overrides (VISUALTESTGEN_*).
const EnvPrefix = "visualtestgen"

// Config is the top-level configuration struct.
type Config struct {
	Input        InputConfig       `yaml:"input"`
	Output       OutputConfig      `yaml:"output"`
	Environments EnvironmentConfig `yaml:"environments"`
	Templates    TemplateConfig    `yaml:"templates"`
	Server       ServerConfig      `yaml:"server"`
	Logging      LoggingConfig     `yaml:"logging"`
}

type InputConfig struct {
	Dialect   string `yaml:"dialect"` // "naive" or "quoted"
	Delimiter string `yaml:"delimiter"`
}

type OutputConfig struct {
	Locators       *bool  `yaml:"locators"`  // pointer to distinguish unset from false
	TestData       *bool  `yaml:"test_data"` // pointer to distinguish unset from false
	Representative string `yaml:"representative"`
}

type EnvironmentConfig struct {
	ScreenshotRoot string `yaml:"screenshot_root"`
	TimeoutMs      int    `yaml:"timeout_ms"`
}

type TemplateConfig struct {
	Directory string `yaml:"directory"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// envOverrides holds the settings that may be overridden from the environment.
type envOverrides struct {
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFile        string `envconfig:"LOG_FILE"`
	Dialect        string `envconfig:"INPUT_DIALECT"`
	TemplateDir    string `envconfig:"TEMPLATE_DIR"`
	Representative string `envconfig:"REPRESENTATIVE"`
}

// DelimiterRune returns the field delimiter, defaulting to a comma.
func (i InputConfig) DelimiterRune() rune {
	for _, r := range i.Delimiter {
		return r
	}
	return ','
}

// LocatorsEnabled reports whether page-object modules are emitted.
func (o OutputConfig) LocatorsEnabled() bool {
	return o.Locators == nil || *o.Locators
}

// TestDataEnabled reports whether test-data modules are emitted.
func (o OutputConfig) TestDataEnabled() bool {
	return o.TestData == nil || *o.TestData
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns DefaultConfig when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// LoadDotEnv loads KEY=value pairs from a dotenv file into the process
// environment so ApplyEnv sees them. Variables already set are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return domain.NewErrorWithSuggestion("config", path, 0,
			"failed to load env file",
			"use KEY=value lines, e.g. VISUALTESTGEN_LOG_LEVEL=debug",
			err)
	}
	return nil
}

// ApplyEnv overlays VISUALTESTGEN_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return domain.NewError("config", "", 0, "failed to read environment overrides", err)
	}

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
	}
	if o.Dialect != "" {
		cfg.Input.Dialect = o.Dialect
	}
	if o.TemplateDir != "" {
		cfg.Templates.Directory = o.TemplateDir
	}
	if o.Representative != "" {
		cfg.Output.Representative = o.Representative
	}
	return nil
}
