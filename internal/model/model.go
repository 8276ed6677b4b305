// Package model defines core data structures for reqcheck.
package model

import "sort"

// SymbolKind indicates the syntactic kind of a symbol.
type SymbolKind string

const (
	Class    SymbolKind = "class"
	Function SymbolKind = "function"
	Constant SymbolKind = "constant"
)

// Symbol is a fully qualified name found in source code. Name never carries
// a leading namespace separator.
type Symbol struct {
	Name string
	Kind SymbolKind
}

// SymbolSet is an insertion-ordered set of symbols keyed by name.
// The zero value is not usable; call NewSymbolSet.
type SymbolSet struct {
	index map[string]int
	items []Symbol
}

// NewSymbolSet returns a set holding syms.
func NewSymbolSet(syms ...Symbol) *SymbolSet {
	s := &SymbolSet{index: make(map[string]int, len(syms))}
	for _, sym := range syms {
		s.Add(sym)
	}
	return s
}

// NamesOf builds a set from plain names, all tagged with kind.
func NamesOf(kind SymbolKind, names ...string) *SymbolSet {
	s := NewSymbolSet()
	for _, n := range names {
		s.Add(Symbol{Name: n, Kind: kind})
	}
	return s
}

// Add inserts sym unless a symbol with the same name is present.
// It reports whether the set changed.
func (s *SymbolSet) Add(sym Symbol) bool {
	if sym.Name == "" {
		return false
	}
	if _, ok := s.index[sym.Name]; ok {
		return false
	}
	s.index[sym.Name] = len(s.items)
	s.items = append(s.items, sym)
	return true
}

// Has reports whether name is in the set.
func (s *SymbolSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Len returns the number of symbols.
func (s *SymbolSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Symbols returns the symbols in insertion order. The slice is a copy.
func (s *SymbolSet) Symbols() []Symbol {
	if s == nil {
		return nil
	}
	out := make([]Symbol, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the symbol names in insertion order.
func (s *SymbolSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	for i, sym := range s.items {
		out[i] = sym.Name
	}
	return out
}

// Union adds every symbol of others to s, in order, and returns s.
func (s *SymbolSet) Union(others ...*SymbolSet) *SymbolSet {
	for _, o := range others {
		if o == nil {
			continue
		}
		for _, sym := range o.items {
			s.Add(sym)
		}
	}
	return s
}

// Provenance records why a file is part of the analysis.
type Provenance string

const (
	PackageFile    Provenance = "package"
	DependencyFile Provenance = "dependency"
	ExtraFile      Provenance = "extra"
)

// SourceFile is an absolute path to a file that will be parsed.
type SourceFile struct {
	Path       string
	Provenance Provenance
}

// SourceFileSet holds files unique by path.
type SourceFileSet []SourceFile

// Paths returns the file paths in order.
func (fs SourceFileSet) Paths() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Path
	}
	return out
}

// Count returns how many files carry provenance p.
func (fs SourceFileSet) Count(p Provenance) int {
	n := 0
	for _, f := range fs {
		if f.Provenance == p {
			n++
		}
	}
	return n
}

// NewSourceFileSet tags every path with p, drops duplicates and sorts by path.
func NewSourceFileSet(p Provenance, paths ...string) SourceFileSet {
	seen := make(map[string]struct{}, len(paths))
	var out SourceFileSet
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, SourceFile{Path: path, Provenance: p})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// UnionFiles concatenates sets, keeping the first occurrence of each path.
func UnionFiles(sets ...SourceFileSet) SourceFileSet {
	seen := make(map[string]struct{})
	var out SourceFileSet
	for _, set := range sets {
		for _, f := range set {
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
