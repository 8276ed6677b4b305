package intrinsic

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/phobologic/reqcheck/internal/model"
)

func table() *Static {
	return NewStatic(map[string]Extension{
		"Core":     {Classes: []string{"stdClass", "Exception"}, Constants: []string{"PHP_EOL"}},
		"standard": {Functions: []string{"strlen", "array_map"}, Constants: []string{"PHP_EOL"}},
		"mbstring": {Functions: []string{"mb_strlen"}},
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	got, err := Resolve(context.Background(), table(), []string{"core", "STANDARD", "ext-mbstring", "unknown", "core"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"stdClass", "Exception", "PHP_EOL", "strlen", "array_map", "mb_strlen"}
	if names := got.Names(); !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if got.Symbols()[3].Kind != model.Function {
		t.Errorf("strlen kind = %s", got.Symbols()[3].Kind)
	}
}

func TestResolveNoExtensions(t *testing.T) {
	t.Parallel()
	got, err := Resolve(context.Background(), table(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Errorf("Len = %d", got.Len())
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	got := Normalize([]string{" JSON ", "ext-Intl", "json", "", "Zend OPcache"})
	want := []string{"json", "intl", "zend opcache"}
	if !slices.Equal(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestStaticAvailable(t *testing.T) {
	t.Parallel()
	got, err := table().Available(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"core", "mbstring", "standard"}) {
		t.Errorf("Available = %v", got)
	}
}

func TestBuiltinCoversDefaultExtensions(t *testing.T) {
	t.Parallel()
	b, err := Builtin()
	if err != nil {
		t.Fatal(err)
	}
	found, err := b.Lookup(context.Background(), DefaultCoreExtensions)
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range Normalize(DefaultCoreExtensions) {
		if len(found[ext]) == 0 {
			t.Errorf("builtin table has no symbols for %s", ext)
		}
	}

	set, err := Resolve(context.Background(), b, DefaultCoreExtensions)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"stdClass", "Exception", "strlen", "PHP_EOL", "DateTimeImmutable", "json_encode", "ArrayIterator", `Random\Randomizer`, "preg_match", "TRUE"} {
		if !set.Has(name) {
			t.Errorf("builtin core symbols missing %q", name)
		}
	}
	if set.Has("mb_strlen") {
		t.Error("mbstring symbols leaked into core extensions")
	}
}

type failing struct{}

func (failing) Lookup(context.Context, []string) (map[string][]model.Symbol, error) {
	return nil, errors.New("no php")
}

func (failing) Available(context.Context) ([]string, error) {
	return nil, errors.New("no php")
}

func TestFallback(t *testing.T) {
	t.Parallel()
	f := &Fallback{Primary: failing{}, Secondary: table()}

	got, err := Resolve(context.Background(), f, []string{"mbstring"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Has("mb_strlen") {
		t.Errorf("fallback not used: %v", got.Names())
	}
	avail, err := f.Available(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(avail) != 3 {
		t.Errorf("Available = %v", avail)
	}
}

func TestFallbackPrefersPrimary(t *testing.T) {
	t.Parallel()
	primary := NewStatic(map[string]Extension{"json": {Functions: []string{"json_encode"}}})
	f := &Fallback{Primary: primary, Secondary: table()}

	got, err := Resolve(context.Background(), f, []string{"json", "mbstring"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.Names(), []string{"json_encode"}) {
		t.Errorf("names = %v", got.Names())
	}
}

func TestBinaryMissing(t *testing.T) {
	t.Parallel()
	b := NewBinary(filepath.Join(t.TempDir(), "no-such-php"))
	if _, err := b.Lookup(context.Background(), []string{"json"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := b.Available(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// fakePHP writes a shell script that ignores its arguments and prints out.
func fakePHP(t *testing.T, out string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "php")
	script := "#!/bin/sh\ncat <<'JSON'\n" + out + "\nJSON\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBinaryLookup(t *testing.T) {
	php := fakePHP(t, `{"JSON": {"classes": ["JsonException"], "functions": ["json_encode"], "constants": ["JSON_ERROR_NONE"]}}`)

	got, err := Resolve(context.Background(), NewBinary(php), []string{"json"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"JsonException", "json_encode", "JSON_ERROR_NONE"}
	if !slices.Equal(got.Names(), want) {
		t.Errorf("names = %v, want %v", got.Names(), want)
	}
}

func TestBinaryAvailable(t *testing.T) {
	php := fakePHP(t, `["Core", "date", "mbstring"]`)

	got, err := NewBinary(php).Available(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"core", "date", "mbstring"}) {
		t.Errorf("Available = %v", got)
	}
}

func TestBinaryBadOutput(t *testing.T) {
	php := fakePHP(t, `Fatal error`)
	if _, err := NewBinary(php).Lookup(context.Background(), []string{"json"}); err == nil {
		t.Fatal("expected decode error")
	}
}
