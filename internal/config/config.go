// Package config loads flowmap configuration from a YAML file with
// environment variable overrides. All fields are optional; a missing file
// yields the defaults.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rendis/flowmap/internal/lint"
	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/pkg/schema"
)

// RuleConfig is one user-defined lint rule as written in the config file.
type RuleConfig struct {
	Name     string `yaml:"name"`
	Expr     string `yaml:"expr"`
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`
}

// Config holds all flowmap configuration.
// Priority: env vars > config file > defaults.
type Config struct {
	DBPath        string            `yaml:"db_path"`
	LogLevel      string            `yaml:"log_level"`
	EdgePolicy    string            `yaml:"edge_policy"`
	ContextSchema string            `yaml:"context_schema"`
	Colors        map[string]string `yaml:"colors"`
	Rules         []RuleConfig      `yaml:"rules"`
}

// Default returns the configuration used when no file and no env vars are set.
func Default() Config {
	return Config{
		DBPath:     filepath.Join(flowmapDir(), "flowmap.db"),
		LogLevel:   "info",
		EdgePolicy: string(parser.EdgePolicyLenient),
	}
}

func flowmapDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowmap"
	}
	return filepath.Join(home, ".flowmap")
}

// Load reads a YAML config file, applies env var overrides, and validates.
// An empty path or a missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, schema.NewErrorf(schema.ErrCodeConfig, "read config %s", path).WithCause(err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, schema.NewErrorf(schema.ErrCodeConfig, "parse config %s", path).WithCause(err)
		}
	}

	if v := os.Getenv("FLOWMAP_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLOWMAP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWMAP_EDGE_POLICY"); v != "" {
		cfg.EdgePolicy = v
	}
	if v := os.Getenv("FLOWMAP_CONTEXT_SCHEMA"); v != "" {
		cfg.ContextSchema = v
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch parser.EdgePolicy(cfg.EdgePolicy) {
	case parser.EdgePolicyLenient, parser.EdgePolicyStrict:
	default:
		return schema.NewErrorf(schema.ErrCodeConfig, "invalid edge_policy %q", cfg.EdgePolicy)
	}
	for category := range cfg.Colors {
		if !knownCategory(schema.AgentTypeCategory(category)) {
			return schema.NewErrorf(schema.ErrCodeConfig, "unknown color category %q", category)
		}
	}
	for _, r := range cfg.Rules {
		if r.Name == "" || r.Expr == "" {
			return schema.NewError(schema.ErrCodeConfig, "lint rules require name and expr")
		}
		switch schema.ValidationSeverity(r.Severity) {
		case "", schema.SeverityError, schema.SeverityWarning, schema.SeverityInfo:
		default:
			return schema.NewErrorf(schema.ErrCodeConfig, "rule %q: invalid severity %q", r.Name, r.Severity)
		}
	}
	return nil
}

func knownCategory(c schema.AgentTypeCategory) bool {
	for _, known := range schema.Categories() {
		if known == c {
			return true
		}
	}
	return false
}

// Palette returns the default colors overlaid with configured overrides.
func (c Config) Palette() map[schema.AgentTypeCategory]string {
	palette := schema.DefaultPalette()
	for category, color := range c.Colors {
		palette[schema.AgentTypeCategory(category)] = color
	}
	return palette
}

// LintRules converts the configured rules to the linter's type.
func (c Config) LintRules() []lint.Rule {
	rules := make([]lint.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, lint.Rule{
			Name:     r.Name,
			Expr:     r.Expr,
			Message:  r.Message,
			Severity: schema.ValidationSeverity(r.Severity),
		})
	}
	return rules
}

// ContextSchemaJSON reads the configured context schema file, or returns nil
// when none is configured.
func (c Config) ContextSchemaJSON() ([]byte, error) {
	if c.ContextSchema == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.ContextSchema)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeConfig, "read context schema %s", c.ContextSchema).WithCause(err)
	}
	return data, nil
}
