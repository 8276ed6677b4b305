// Package symbols extracts defined and used symbol names from syntax trees.
package symbols

import (
	"strings"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/model"
)

// Context is the name resolution state at one point of a file: the current
// namespace and the aliases imported so far. A Context is never modified
// after creation; With* methods return a new value.
type Context struct {
	namespace string
	classes   map[string]string // lower-cased alias → name
	functions map[string]string // lower-cased alias → name
	constants map[string]string // alias → name
}

// InNamespace returns a context for a fresh namespace with no imports.
func InNamespace(ns string) Context {
	return Context{namespace: strings.Trim(ns, `\`)}
}

// WithImport returns a copy of c with imp's alias added.
func (c Context) WithImport(imp *ast.Import) Context {
	name := strings.TrimPrefix(imp.Name, `\`)
	alias := imp.Alias
	if alias == "" {
		alias = lastSegment(name)
	}

	next := c
	switch imp.Kind {
	case model.Function:
		next.functions = with(c.functions, strings.ToLower(alias), name)
	case model.Constant:
		next.constants = with(c.constants, alias, name)
	default:
		next.classes = with(c.classes, strings.ToLower(alias), name)
	}
	return next
}

// Resolve returns the fully qualified form of name used as kind, or "" when
// the name does not denote an external symbol (self, static, parent).
func (c Context) Resolve(name string, kind model.SymbolKind) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	if rest, ok := cutPrefixFold(name, `namespace\`); ok {
		return c.qualify(rest)
	}

	if i := strings.IndexByte(name, '\\'); i >= 0 {
		if target, ok := c.classes[strings.ToLower(name[:i])]; ok {
			return target + name[i:]
		}
		return c.qualify(name)
	}

	switch kind {
	case model.Function:
		if target, ok := c.functions[strings.ToLower(name)]; ok {
			return target
		}
		return name
	case model.Constant:
		if target, ok := c.constants[name]; ok {
			return target
		}
		return name
	}

	switch strings.ToLower(name) {
	case "self", "static", "parent":
		return ""
	}
	if target, ok := c.classes[strings.ToLower(name)]; ok {
		return target
	}
	return c.qualify(name)
}

func (c Context) qualify(name string) string {
	if c.namespace == "" {
		return name
	}
	return c.namespace + `\` + name
}

func with(m map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}
