// Package composer reads Composer manifests and the installed package
// database written by Composer into the vendor directory.
package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Manifest is the part of composer.json reqcheck cares about.
type Manifest struct {
	Name       string       `json:"name"`
	Require    Requirements `json:"require"`
	RequireDev Requirements `json:"require-dev"`
	Autoload   Autoload     `json:"autoload"`
	Replace    Requirements `json:"replace"`
	Provide    Requirements `json:"provide"`
	Config     Config       `json:"config"`

	// Dir is the directory holding the manifest. Autoload paths are
	// relative to it.
	Dir string `json:"-"`
}

// Config is the "config" section.
type Config struct {
	VendorDir string `json:"vendor-dir"`
}

// UnmarshalJSON accepts an empty JSON array in place of the object.
func (c *Config) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*c = Config{}
		return nil
	}
	type plain Config
	return json.Unmarshal(data, (*plain)(c))
}

// Autoload is an "autoload" section.
type Autoload struct {
	PSR4                PathMap `json:"psr-4"`
	PSR0                PathMap `json:"psr-0"`
	Classmap            Paths   `json:"classmap"`
	Files               Paths   `json:"files"`
	ExcludeFromClassmap Paths   `json:"exclude-from-classmap"`
}

// UnmarshalJSON accepts an empty JSON array in place of the object.
func (a *Autoload) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*a = Autoload{}
		return nil
	}
	type plain Autoload
	return json.Unmarshal(data, (*plain)(a))
}

// Empty reports whether a declares no autoload rules.
func (a Autoload) Empty() bool {
	return len(a.PSR4) == 0 && len(a.PSR0) == 0 && len(a.Classmap) == 0 && len(a.Files) == 0
}

// Prefixes returns the psr-4 and psr-0 namespace prefixes, sorted.
func (a Autoload) Prefixes() []string {
	var out []string
	for _, m := range []PathMap{a.PSR4, a.PSR0} {
		for prefix := range m {
			out = append(out, prefix)
		}
	}
	sort.Strings(out)
	return out
}

// Requirements maps package names to version constraints.
type Requirements map[string]string

// UnmarshalJSON accepts an empty JSON array in place of the object.
func (r *Requirements) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*r = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = m
	return nil
}

// Names returns the package names in sorted order.
func (r Requirements) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is listed. Package names are case-insensitive.
func (r Requirements) Has(name string) bool {
	for n := range r {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Paths is a list of paths that may be written as a single string.
type Paths []string

// UnmarshalJSON accepts a string or a list of strings.
func (p *Paths) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*p = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = Paths{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = many
	return nil
}

// PathMap maps namespace prefixes to directories.
type PathMap map[string]Paths

// UnmarshalJSON accepts an empty JSON array in place of the object.
func (m *PathMap) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*m = nil
		return nil
	}
	var raw map[string]Paths
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	m.Dir = abs
	return m, nil
}

// Parse decodes manifest JSON. Dir is left empty.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DirectDependencies returns the non-platform packages of "require", sorted.
// Development requirements are not part of the public contract and are
// ignored.
func (m *Manifest) DirectDependencies() []string {
	var out []string
	for _, name := range m.Require.Names() {
		if !IsPlatform(name) {
			out = append(out, name)
		}
	}
	return out
}

// Extensions returns the extension names required with "ext-" entries,
// without the prefix, sorted.
func (m *Manifest) Extensions() []string {
	var out []string
	for _, name := range m.Require.Names() {
		if ext, ok := cutPrefixFold(name, "ext-"); ok && ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// VendorDir returns the absolute vendor directory.
func (m *Manifest) VendorDir() string {
	dir := m.Config.VendorDir
	if dir == "" {
		dir = "vendor"
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(m.Dir, dir)
}

// IsPlatform reports whether name is a platform package rather than an
// installable one.
func IsPlatform(name string) bool {
	name = strings.ToLower(name)
	switch name {
	case "php", "hhvm", "composer", "composer-plugin-api", "composer-runtime-api":
		return true
	}
	for _, prefix := range []string{"php-", "ext-", "lib-"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func isEmptyArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return false
	}
	return len(bytes.TrimSpace(trimmed[1:len(trimmed)-1])) == 0
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
