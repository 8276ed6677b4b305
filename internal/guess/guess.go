// Package guess suggests which package could provide an unknown symbol.
package guess

import (
	"iter"
	"sort"
	"strings"

	"github.com/phobologic/reqcheck/internal/composer"
)

// Guesser suggests candidates for one fully qualified symbol name.
type Guesser interface {
	Guess(symbol string) iter.Seq[string]
}

// Registry maps autoload namespace prefixes to the packages declaring them.
type Registry struct {
	prefixes map[string][]string
	lengths  []int // distinct prefix lengths, longest first
}

// NewRegistry registers the psr-4 and psr-0 prefixes of every installed
// package, direct and transitive.
func NewRegistry(installed *composer.Installed) *Registry {
	r := &Registry{prefixes: make(map[string][]string)}
	if installed == nil {
		return r
	}
	for _, pkg := range installed.Packages {
		for _, prefix := range pkg.Autoload.Prefixes() {
			r.Register(prefix, pkg.Name)
		}
	}
	return r
}

// Register records that pkg autoloads prefix. Empty prefixes and repeated
// registrations are ignored.
func (r *Registry) Register(prefix, pkg string) {
	prefix = strings.TrimPrefix(prefix, `\`)
	if prefix == "" || pkg == "" {
		return
	}
	names, ok := r.prefixes[prefix]
	for _, n := range names {
		if n == pkg {
			return
		}
	}
	r.prefixes[prefix] = append(names, pkg)
	if !ok {
		r.addLength(len(prefix))
	}
}

func (r *Registry) addLength(n int) {
	i := sort.Search(len(r.lengths), func(i int) bool { return r.lengths[i] <= n })
	if i < len(r.lengths) && r.lengths[i] == n {
		return
	}
	r.lengths = append(r.lengths, 0)
	copy(r.lengths[i+1:], r.lengths[i:])
	r.lengths[i] = n
}

// Guess yields the packages registered for the longest proper prefix of
// symbol, in registration order.
func (r *Registry) Guess(symbol string) iter.Seq[string] {
	symbol = strings.TrimPrefix(symbol, `\`)
	return func(yield func(string) bool) {
		for _, n := range r.lengths {
			if n >= len(symbol) {
				continue
			}
			names, ok := r.prefixes[symbol[:n]]
			if !ok {
				continue
			}
			for _, name := range names {
				if !yield(name) {
					return
				}
			}
			return
		}
	}
}

// Chain asks each guesser in turn and yields every candidate once.
type Chain []Guesser

func (c Chain) Guess(symbol string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, g := range c {
			for candidate := range g.Guess(symbol) {
				if _, dup := seen[candidate]; dup {
					continue
				}
				seen[candidate] = struct{}{}
				if !yield(candidate) {
					return
				}
			}
		}
	}
}
