package guess

import (
	"context"
	"iter"

	"github.com/phobologic/reqcheck/internal/intrinsic"
)

// Extensions suggests "ext-<name>" requirements for symbols that a PHP
// extension the package does not declare would provide.
type Extensions struct {
	owners map[string][]string
}

// NewExtensions indexes the symbols of every extension p knows except the
// ones in declared.
func NewExtensions(ctx context.Context, p intrinsic.Provider, declared []string) (*Extensions, error) {
	available, err := p.Available(ctx)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{})
	for _, name := range intrinsic.Normalize(declared) {
		skip[name] = struct{}{}
	}
	var candidates []string
	for _, name := range intrinsic.Normalize(available) {
		if _, ok := skip[name]; !ok {
			candidates = append(candidates, name)
		}
	}

	found, err := p.Lookup(ctx, candidates)
	if err != nil {
		return nil, err
	}
	e := &Extensions{owners: make(map[string][]string)}
	for _, name := range candidates {
		for _, sym := range found[name] {
			e.owners[sym.Name] = append(e.owners[sym.Name], "ext-"+name)
		}
	}
	return e, nil
}

func (e *Extensions) Guess(symbol string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, ext := range e.owners[symbol] {
			if !yield(ext) {
				return
			}
		}
	}
}
