package composer

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseManifest(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(`{
		"name": "acme/app",
		"require": {"php": "^8.1", "ext-json": "*", "ext-mbstring": "*", "vendor/bar": "^1.0", "lib-pcre": "*"},
		"require-dev": {"phpunit/phpunit": "^10"},
		"autoload": {
			"psr-4": {"App\\": "src/", "App\\Tests\\": ["tests/", "more/"]},
			"psr-0": {"Legacy_": "lib/"},
			"classmap": "classes/",
			"files": ["helpers.php"],
			"exclude-from-classmap": ["/classes/Skip/"]
		},
		"config": {"vendor-dir": "deps"}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	if got := m.DirectDependencies(); !slices.Equal(got, []string{"vendor/bar"}) {
		t.Errorf("DirectDependencies = %v", got)
	}
	if got := m.Extensions(); !slices.Equal(got, []string{"json", "mbstring"}) {
		t.Errorf("Extensions = %v", got)
	}
	if got := m.Autoload.PSR4[`App\Tests\`]; !slices.Equal(got, Paths{"tests/", "more/"}) {
		t.Errorf("psr-4 list = %v", got)
	}
	if got := m.Autoload.Classmap; !slices.Equal(got, Paths{"classes/"}) {
		t.Errorf("classmap = %v", got)
	}
	if got := m.Autoload.Prefixes(); !slices.Equal(got, []string{`App\`, `App\Tests\`, "Legacy_"}) {
		t.Errorf("Prefixes = %v", got)
	}
	if m.Autoload.Empty() {
		t.Error("autoload reported empty")
	}

	m.Dir = "/project"
	if got := m.VendorDir(); got != filepath.Join("/project", "deps") {
		t.Errorf("VendorDir = %q", got)
	}
}

func TestParseManifestEmptyArrays(t *testing.T) {
	t.Parallel()
	m, err := Parse([]byte(`{"require": [], "autoload": [], "replace": [], "config": [], "autoload-dev": {"psr-4": []}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Require) != 0 || !m.Autoload.Empty() {
		t.Errorf("got %+v", m)
	}

	m, err = Parse([]byte(`{"autoload": {"psr-4": [], "classmap": null}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !m.Autoload.Empty() {
		t.Errorf("autoload = %+v", m.Autoload)
	}
}

func TestParseManifestInvalid(t *testing.T) {
	t.Parallel()
	for _, src := range []string{`{`, `{"require": "x"}`, `{"autoload": {"psr-4": 3}}`} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%s): expected error", src)
		}
	}
}

func TestLoadSetsDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "composer.json")
	writeFile(t, path, `{"name": "acme/app"}`)

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir != dir {
		t.Errorf("Dir = %q, want %q", m.Dir, dir)
	}
	if m.VendorDir() != filepath.Join(dir, "vendor") {
		t.Errorf("VendorDir = %q", m.VendorDir())
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "composer.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsPlatform(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"php":                  true,
		"PHP":                  true,
		"php-64bit":            true,
		"hhvm":                 true,
		"ext-json":             true,
		"lib-icu":              true,
		"composer":             true,
		"composer-plugin-api":  true,
		"composer-runtime-api": true,
		"vendor/bar":           false,
		"phpunit/phpunit":      false,
		"composer/semver":      false,
	}
	for name, want := range tests {
		if got := IsPlatform(name); got != want {
			t.Errorf("IsPlatform(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLoadInstalledComposer2(t *testing.T) {
	t.Parallel()
	vendor := filepath.Join(t.TempDir(), "vendor")
	writeFile(t, filepath.Join(vendor, "composer", "installed.json"), `{
		"packages": [
			{"name": "vendor/bar", "install-path": "../bar", "autoload": {"psr-4": {"Vendor\\Bar\\": "src/"}}},
			{"name": "vendor/fork", "replace": {"vendor/original": "self.version"}},
			{"name": "vendor/impl", "provide": {"psr/log-implementation": "1.0"}}
		],
		"dev": true
	}`)

	in, err := LoadInstalled(vendor)
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Packages) != 3 {
		t.Fatalf("expected 3 packages, got %d", len(in.Packages))
	}

	bar, ok := in.Find("Vendor/Bar")
	if !ok {
		t.Fatal("vendor/bar not found")
	}
	if bar.Dir != filepath.Join(vendor, "bar") {
		t.Errorf("Dir = %q", bar.Dir)
	}

	fork, ok := in.Find("vendor/original")
	if !ok || fork.Name != "vendor/fork" {
		t.Errorf("replace lookup = %v, %v", fork, ok)
	}
	if fork.Dir != filepath.Join(vendor, "vendor", "fork") {
		t.Errorf("default Dir = %q", fork.Dir)
	}

	impl, ok := in.Find("psr/log-implementation")
	if !ok || impl.Name != "vendor/impl" {
		t.Errorf("provide lookup = %v, %v", impl, ok)
	}

	if _, ok := in.Find("nobody/home"); ok {
		t.Error("unexpected match")
	}
}

func TestLoadInstalledComposer1(t *testing.T) {
	t.Parallel()
	vendor := t.TempDir()
	writeFile(t, filepath.Join(vendor, "composer", "installed.json"), `[{"name": "old/pkg", "autoload": {"classmap": ["lib/"]}}]`)

	in, err := LoadInstalled(vendor)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := in.Find("old/pkg")
	if !ok {
		t.Fatal("old/pkg not found")
	}
	if !slices.Equal(p.Autoload.Classmap, Paths{"lib/"}) {
		t.Errorf("classmap = %v", p.Autoload.Classmap)
	}
}

func TestLoadInstalledMissing(t *testing.T) {
	t.Parallel()
	in, err := LoadInstalled(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Packages) != 0 {
		t.Errorf("got %d packages", len(in.Packages))
	}
}

func TestLoadInstalledInvalid(t *testing.T) {
	t.Parallel()
	vendor := t.TempDir()
	writeFile(t, filepath.Join(vendor, "composer", "installed.json"), `{"packages": 7}`)
	if _, err := LoadInstalled(vendor); err == nil {
		t.Fatal("expected error")
	}
}
