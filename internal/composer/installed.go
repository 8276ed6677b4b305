package composer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Package is one entry of vendor/composer/installed.json.
type Package struct {
	Name        string       `json:"name"`
	Autoload    Autoload     `json:"autoload"`
	Require     Requirements `json:"require"`
	Replace     Requirements `json:"replace"`
	Provide     Requirements `json:"provide"`
	InstallPath string       `json:"install-path"`

	// Dir is the absolute directory the package is installed in.
	Dir string `json:"-"`
}

// Installed is the set of packages Composer installed into a vendor
// directory.
type Installed struct {
	Packages []*Package
	byName   map[string]*Package
}

// LoadInstalled reads <vendorDir>/composer/installed.json. A missing file
// yields an empty database, since a project without dependencies may never
// have run composer install.
func LoadInstalled(vendorDir string) (*Installed, error) {
	path := filepath.Join(vendorDir, "composer", "installed.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewInstalled(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading installed packages: %w", err)
	}

	pkgs, err := decodeInstalled(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	for _, p := range pkgs {
		p.Dir = installDir(vendorDir, p)
	}
	return NewInstalled(pkgs), nil
}

// NewInstalled indexes pkgs. Dir must already be set on every package.
func NewInstalled(pkgs []*Package) *Installed {
	in := &Installed{Packages: pkgs, byName: make(map[string]*Package, len(pkgs))}
	for _, p := range pkgs {
		in.byName[strings.ToLower(p.Name)] = p
	}
	return in
}

// Find returns the installed package named name or, failing that, a package
// that replaces or provides it.
func (in *Installed) Find(name string) (*Package, bool) {
	if p, ok := in.byName[strings.ToLower(name)]; ok {
		return p, true
	}
	for _, p := range in.Packages {
		if p.Replace.Has(name) || p.Provide.Has(name) {
			return p, true
		}
	}
	return nil, false
}

// decodeInstalled handles both the Composer 1 layout (a bare array) and the
// Composer 2 layout ({"packages": [...]}).
func decodeInstalled(data []byte) ([]*Package, error) {
	var v2 struct {
		Packages []*Package `json:"packages"`
	}
	if err := json.Unmarshal(data, &v2); err == nil {
		return v2.Packages, nil
	}
	var v1 []*Package
	if err := json.Unmarshal(data, &v1); err != nil {
		return nil, err
	}
	return v1, nil
}

// installDir is relative to vendor/composer when install-path is set and
// <vendor>/<name> otherwise.
func installDir(vendorDir string, p *Package) string {
	if p.InstallPath == "" {
		return filepath.Join(vendorDir, filepath.FromSlash(p.Name))
	}
	if filepath.IsAbs(p.InstallPath) {
		return filepath.Clean(p.InstallPath)
	}
	return filepath.Join(vendorDir, "composer", filepath.FromSlash(p.InstallPath))
}
