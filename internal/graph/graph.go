// Package graph models the require relationships between the root package
// and the packages installed into its vendor directory.
package graph

import (
	"sort"
	"strings"

	"github.com/phobologic/reqcheck/internal/composer"
)

// Graph is a directed require graph keyed by lower-cased package name.
type Graph struct {
	root  string
	names map[string]string   // key → display name
	edges map[string][]string // key → sorted required keys
}

// Build creates the graph rooted at m. Requirements are resolved through
// installed so a replaced or provided name points at the package that
// satisfies it. Platform requirements are not part of the graph.
func Build(m *composer.Manifest, installed *composer.Installed) *Graph {
	if installed == nil {
		installed = composer.NewInstalled(nil)
	}
	g := &Graph{
		root:  key(m.Name),
		names: make(map[string]string),
		edges: make(map[string][]string),
	}
	g.names[g.root] = m.Name

	g.connect(g.root, m.Require, installed)
	for _, p := range installed.Packages {
		k := key(p.Name)
		g.names[k] = p.Name
		g.connect(k, p.Require, installed)
	}
	return g
}

func (g *Graph) connect(src string, require composer.Requirements, installed *composer.Installed) {
	seen := make(map[string]struct{})
	for _, name := range require.Names() {
		if composer.IsPlatform(name) {
			continue
		}
		target := name
		if p, ok := installed.Find(name); ok {
			target = p.Name
		}
		k := key(target)
		if k == src {
			continue // no self-edges
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := g.names[k]; !ok {
			g.names[k] = target
		}
		g.edges[src] = append(g.edges[src], k)
	}
	sort.Strings(g.edges[src])
}

// Path returns the shortest require chain from the root package to target,
// excluding both ends. ok is false when target is unreachable. A direct
// requirement yields an empty chain. Among chains of equal length the
// lexically smallest one wins.
func (g *Graph) Path(target string) (via []string, ok bool) {
	dst := key(target)
	if dst == g.root {
		return nil, true
	}

	prev := map[string]string{g.root: ""}
	queue := []string{g.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range g.edges[node] {
			if _, visited := prev[next]; visited {
				continue
			}
			prev[next] = node
			if next == dst {
				return g.chain(prev, node), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

// chain walks prev back from last to the root.
func (g *Graph) chain(prev map[string]string, last string) []string {
	var out []string
	for node := last; node != g.root; node = prev[node] {
		out = append(out, g.names[node])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func key(name string) string {
	return strings.ToLower(name)
}
