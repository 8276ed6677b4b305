// Package config holds the options that tune a check.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/reqcheck/internal/intrinsic"
)

// DefaultFileName is where init writes the configuration.
const DefaultFileName = "composer-require-checker.json"

// Config represents the reqcheck configuration.
type Config struct {
	SymbolWhitelist   []string `json:"symbol-whitelist" yaml:"symbol-whitelist" toml:"symbol-whitelist"`
	ScanFiles         []string `json:"scan-files" yaml:"scan-files" toml:"scan-files"`
	PHPCoreExtensions []string `json:"php-core-extensions" yaml:"php-core-extensions" toml:"php-core-extensions"`
}

// fileConfig tells keys that are absent from keys that are set to an empty
// list.
type fileConfig struct {
	SymbolWhitelist   *[]string `json:"symbol-whitelist" yaml:"symbol-whitelist" toml:"symbol-whitelist"`
	ScanFiles         *[]string `json:"scan-files" yaml:"scan-files" toml:"scan-files"`
	PHPCoreExtensions *[]string `json:"php-core-extensions" yaml:"php-core-extensions" toml:"php-core-extensions"`
}

// Default returns a fresh Config holding the built-in options.
func Default() *Config {
	return &Config{
		SymbolWhitelist: []string{
			"null", "true", "false",
			"static", "self", "parent",
			"array", "string", "int", "float", "bool",
			"iterable", "callable", "void", "object", "mixed", "never",
		},
		ScanFiles:         []string{},
		PHPCoreExtensions: append([]string(nil), intrinsic.DefaultCoreExtensions...),
	}
}

// Load reads the configuration file at path on top of the defaults. An
// empty path returns the defaults. The format follows the extension: .json
// is JSON, .toml is TOML and everything else is read as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var file fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	cfg.merge(&file)
	return cfg, nil
}

// merge replaces every option the file sets, even with an empty list.
func (c *Config) merge(other *fileConfig) {
	if other.SymbolWhitelist != nil {
		c.SymbolWhitelist = *other.SymbolWhitelist
	}
	if other.ScanFiles != nil {
		c.ScanFiles = *other.ScanFiles
	}
	if other.PHPCoreExtensions != nil {
		c.PHPCoreExtensions = *other.PHPCoreExtensions
	}
}

// Marshal encodes c in the format implied by the extension of path.
func (c *Config) Marshal(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Marshal(c)
	case ".yaml", ".yml":
		return yaml.Marshal(c)
	default:
		out, err := json.MarshalIndent(c, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
}
