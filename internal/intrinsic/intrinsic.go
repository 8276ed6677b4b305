// Package intrinsic reports the symbols PHP itself provides through its
// extensions.
package intrinsic

import (
	"context"
	"strings"

	"github.com/phobologic/reqcheck/internal/model"
)

// DefaultCoreExtensions are always present in a PHP build.
var DefaultCoreExtensions = []string{
	"Core", "date", "json", "hash", "pcre", "Phar", "Reflection", "SPL", "random", "standard",
}

// Provider looks up the symbols of PHP extensions.
type Provider interface {
	// Lookup returns the symbols of every known extension in names, keyed
	// by lower-cased extension name. Unknown extensions are left out.
	Lookup(ctx context.Context, names []string) (map[string][]model.Symbol, error)
	// Available returns the names of every extension the provider knows.
	Available(ctx context.Context) ([]string, error)
}

// Resolve returns the union of the symbols of extensions, in list order.
func Resolve(ctx context.Context, p Provider, extensions []string) (*model.SymbolSet, error) {
	names := Normalize(extensions)
	found, err := p.Lookup(ctx, names)
	if err != nil {
		return nil, err
	}
	out := model.NewSymbolSet()
	for _, name := range names {
		for _, sym := range found[name] {
			out.Add(sym)
		}
	}
	return out, nil
}

// Normalize lower-cases extension names, strips an "ext-" prefix and drops
// duplicates, keeping the first occurrence.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		n = strings.TrimPrefix(n, "ext-")
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Extension lists the symbols one extension declares.
type Extension struct {
	Classes   []string `yaml:"classes" json:"classes"`
	Functions []string `yaml:"functions" json:"functions"`
	Constants []string `yaml:"constants" json:"constants"`
}

// Symbols flattens e into tagged symbols.
func (e Extension) Symbols() []model.Symbol {
	out := make([]model.Symbol, 0, len(e.Classes)+len(e.Functions)+len(e.Constants))
	for _, n := range e.Classes {
		out = append(out, model.Symbol{Name: strings.TrimPrefix(n, `\`), Kind: model.Class})
	}
	for _, n := range e.Functions {
		out = append(out, model.Symbol{Name: strings.TrimPrefix(n, `\`), Kind: model.Function})
	}
	for _, n := range e.Constants {
		out = append(out, model.Symbol{Name: strings.TrimPrefix(n, `\`), Kind: model.Constant})
	}
	return out
}
