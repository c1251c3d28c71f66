package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesLanguageReferencePrefixes(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "for", cfg.Codegen.ForLabelPrefix)
	assert.Equal(t, "while", cfg.Codegen.WhileLabelPrefix)
	assert.Equal(t, "repeat", cfg.Codegen.RepeatLabelPrefix)
	assert.Equal(t, "else", cfg.Codegen.ElseLabelPrefix)
	assert.Equal(t, "fin", cfg.Codegen.FinLabelPrefix)
	assert.Equal(t, "float", cfg.Codegen.FloatLabelPrefix)
	assert.Equal(t, "str", cfg.Codegen.StringLabelPrefix)
	assert.Equal(t, ".s", cfg.Output.FileSuffix)
	assert.True(t, cfg.Output.IndentCommands)
	assert.True(t, cfg.Output.ColorDiagnostic)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pas32c.toml")
	contents := `
[codegen]
for_label_prefix = "loop"

[output]
file_suffix = ".asm"
indent_commands = false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loop", cfg.Codegen.ForLabelPrefix)
	assert.Equal(t, ".asm", cfg.Output.FileSuffix)
	assert.False(t, cfg.Output.IndentCommands)
	// Fields absent from the overlay keep their defaults.
	assert.Equal(t, "while", cfg.Codegen.WhileLabelPrefix)
	assert.True(t, cfg.Output.ColorDiagnostic)
}

func TestLoadMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
