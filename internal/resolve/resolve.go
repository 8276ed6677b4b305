// Package resolve computes the symbols a package uses without any guarantee
// that they exist.
package resolve

import (
	"errors"

	"github.com/phobologic/reqcheck/internal/model"
)

// ErrNoUsedSymbols is returned when there is nothing to check. It almost
// always means the autoload configuration points at no source files.
var ErrNoUsedSymbols = errors.New("no used symbols found")

// Unresolved returns the symbols of used that appear in none of known, in
// the order they were discovered. Names are compared exactly.
func Unresolved(used *model.SymbolSet, known ...*model.SymbolSet) ([]model.Symbol, error) {
	if used.Len() == 0 {
		return nil, ErrNoUsedSymbols
	}

	var out []model.Symbol
outer:
	for _, sym := range used.Symbols() {
		for _, k := range known {
			if k.Has(sym.Name) {
				continue outer
			}
		}
		out = append(out, sym)
	}
	return out, nil
}
