package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowmap/pkg/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "lenient", cfg.EdgePolicy)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Empty(t, cfg.Rules)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
edge_policy: strict
colors:
  llm: "#ff0000"
rules:
  - name: llm-needs-prompt
    expr: category == "llm" && prompt == ""
    message: llm node has no prompt
    severity: warning
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "strict", cfg.EdgePolicy)
	assert.Equal(t, "#ff0000", cfg.Colors["llm"])
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "llm-needs-prompt", cfg.Rules[0].Name)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "log_level: debug\n")
	t.Setenv("FLOWMAP_LOG_LEVEL", "warn")
	t.Setenv("FLOWMAP_EDGE_POLICY", "strict")
	t.Setenv("FLOWMAP_DB_PATH", "/tmp/override.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "strict", cfg.EdgePolicy)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
}

func TestInvalidEdgePolicy(t *testing.T) {
	path := writeConfig(t, "edge_policy: sloppy\n")

	_, err := Load(path)
	require.Error(t, err)
	var ferr *schema.FlowmapError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeConfig, ferr.Code)
}

func TestInvalidColorCategory(t *testing.T) {
	path := writeConfig(t, "colors:\n  robot: \"#fff\"\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestInvalidRule(t *testing.T) {
	path := writeConfig(t, "rules:\n  - name: broken\n")
	_, err := Load(path)
	require.Error(t, err)

	path = writeConfig(t, "rules:\n  - name: r\n    expr: \"true\"\n    severity: fatal\n")
	_, err = Load(path)
	require.Error(t, err)
}

func TestPaletteOverlay(t *testing.T) {
	cfg := Default()
	cfg.Colors = map[string]string{"llm": "#123456"}

	palette := cfg.Palette()
	assert.Equal(t, "#123456", palette[schema.CategoryLLM])
	assert.Equal(t, schema.DefaultPalette()[schema.CategoryCore], palette[schema.CategoryCore])
}

func TestLintRulesConversion(t *testing.T) {
	cfg := Default()
	cfg.Rules = []RuleConfig{{Name: "r", Expr: "true", Message: "m", Severity: "info"}}

	rules := cfg.LintRules()
	require.Len(t, rules, 1)
	assert.Equal(t, schema.SeverityInfo, rules[0].Severity)
}

func TestContextSchemaJSON(t *testing.T) {
	cfg := Default()
	data, err := cfg.ContextSchemaJSON()
	require.NoError(t, err)
	assert.Nil(t, data)

	schemaPath := filepath.Join(t.TempDir(), "ctx.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type":"object"}`), 0o600))
	cfg.ContextSchema = schemaPath

	data, err = cfg.ContextSchemaJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(data))

	cfg.ContextSchema = filepath.Join(t.TempDir(), "missing.json")
	_, err = cfg.ContextSchemaJSON()
	require.Error(t, err)
}
