// Package config loads the compiler's optional TOML configuration file,
// following the layered-struct pattern used across the example pack:
// defaults first, overridden by whatever the file on disk supplies.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config controls the two ambient knobs this compiler exposes beyond the
// CLI flags: the label prefixes the generator allocates fresh names from,
// and a handful of output-formatting toggles for the emitted assembly.
type Config struct {
	Codegen struct {
		ForLabelPrefix    string `toml:"for_label_prefix"`
		WhileLabelPrefix  string `toml:"while_label_prefix"`
		RepeatLabelPrefix string `toml:"repeat_label_prefix"`
		ElseLabelPrefix   string `toml:"else_label_prefix"`
		FinLabelPrefix    string `toml:"fin_label_prefix"`
		FloatLabelPrefix  string `toml:"float_label_prefix"`
		StringLabelPrefix string `toml:"string_label_prefix"`
	} `toml:"codegen"`

	Output struct {
		FileSuffix      string `toml:"file_suffix"`
		IndentCommands  bool   `toml:"indent_commands"`
		ColorDiagnostic bool   `toml:"color_diagnostics"`
	} `toml:"output"`
}

// Default returns the configuration used when no config file is found,
// matching the label prefixes named in the language reference.
func Default() *Config {
	cfg := &Config{}
	cfg.Codegen.ForLabelPrefix = "for"
	cfg.Codegen.WhileLabelPrefix = "while"
	cfg.Codegen.RepeatLabelPrefix = "repeat"
	cfg.Codegen.ElseLabelPrefix = "else"
	cfg.Codegen.FinLabelPrefix = "fin"
	cfg.Codegen.FloatLabelPrefix = "float"
	cfg.Codegen.StringLabelPrefix = "str"

	cfg.Output.FileSuffix = ".s"
	cfg.Output.IndentCommands = true
	cfg.Output.ColorDiagnostic = true
	return cfg
}

// Load reads path, overlaying its contents onto Default. A missing file
// is not an error: it simply yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
