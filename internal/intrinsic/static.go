package intrinsic

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/reqcheck/internal/model"
)

// Static serves symbols from an in-memory table.
type Static struct {
	extensions map[string]Extension
}

// NewStatic returns a provider over table. Extension names are matched
// case-insensitively.
func NewStatic(table map[string]Extension) *Static {
	s := &Static{extensions: make(map[string]Extension, len(table))}
	for name, ext := range table {
		s.extensions[strings.ToLower(name)] = ext
	}
	return s
}

func (s *Static) Lookup(_ context.Context, names []string) (map[string][]model.Symbol, error) {
	out := make(map[string][]model.Symbol)
	for _, name := range Normalize(names) {
		if ext, ok := s.extensions[name]; ok {
			out[name] = ext.Symbols()
		}
	}
	return out, nil
}

func (s *Static) Available(context.Context) ([]string, error) {
	out := make([]string, 0, len(s.extensions))
	for name := range s.extensions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

//go:embed builtin.yaml
var builtinYAML []byte

var loadBuiltin = sync.OnceValues(func() (*Static, error) {
	var table map[string]Extension
	if err := yaml.Unmarshal(builtinYAML, &table); err != nil {
		return nil, fmt.Errorf("decoding builtin symbol table: %w", err)
	}
	return NewStatic(table), nil
})

// Builtin returns a provider for the symbols of common PHP extensions,
// used when no PHP binary is available.
func Builtin() (*Static, error) {
	return loadBuiltin()
}
