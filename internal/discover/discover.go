// Package discover finds the PHP source files that make up a package, its
// direct dependencies and any extra files requested by configuration.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/reqcheck/internal/composer"
	"github.com/phobologic/reqcheck/internal/lang"
	"github.com/phobologic/reqcheck/internal/model"
)

// Request describes what to locate.
type Request struct {
	Manifest  *composer.Manifest
	Installed *composer.Installed
	// ScanFiles are gitignore-style patterns relative to the manifest
	// directory.
	ScanFiles []string
}

// Sets holds the located files grouped by why they are analyzed.
type Sets struct {
	Package      model.SourceFileSet
	Dependencies model.SourceFileSet
	Extra        model.SourceFileSet
}

// Locate resolves every autoload rule of the package and of its direct
// dependencies, and expands the scan-files patterns. Missing directories and
// packages are logged and skipped.
func Locate(ctx context.Context, req Request) (*Sets, error) {
	m := req.Manifest
	// The root package's own rules may cover its vendor directory, which
	// belongs to the dependencies.
	own, err := Autoload(ctx, m.Dir, m.Autoload, m.VendorDir())
	if err != nil {
		return nil, err
	}

	installed := req.Installed
	if installed == nil {
		installed = composer.NewInstalled(nil)
	}
	var deps []string
	for _, name := range m.DirectDependencies() {
		files, err := dependency(ctx, m.VendorDir(), installed, name)
		if err != nil {
			return nil, err
		}
		deps = append(deps, files...)
	}

	extra, err := Expand(ctx, m.Dir, req.ScanFiles)
	if err != nil {
		return nil, err
	}

	sets := &Sets{
		Package:      model.NewSourceFileSet(model.PackageFile, own...),
		Dependencies: model.NewSourceFileSet(model.DependencyFile, deps...),
		Extra:        model.NewSourceFileSet(model.ExtraFile, extra...),
	}
	log.FromContext(ctx).Debug("located files",
		"package", len(sets.Package),
		"dependencies", len(sets.Dependencies),
		"extra", len(sets.Extra))
	return sets, nil
}

func dependency(ctx context.Context, vendorDir string, installed *composer.Installed, name string) ([]string, error) {
	logger := log.FromContext(ctx)
	if pkg, ok := installed.Find(name); ok {
		if pkg.Autoload.Empty() {
			logger.Debug("dependency declares no autoload rules", "package", name)
		}
		return Autoload(ctx, pkg.Dir, pkg.Autoload)
	}

	path := filepath.Join(vendorDir, filepath.FromSlash(name), "composer.json")
	if _, err := os.Stat(path); err != nil {
		logger.Warn("dependency not installed", "package", name)
		return nil, nil
	}
	dep, err := composer.Load(path)
	if err != nil {
		logger.Warn("unreadable dependency manifest", "package", name, "err", err)
		return nil, nil
	}
	return Autoload(ctx, dep.Dir, dep.Autoload)
}

// Autoload returns the absolute paths of every file the autoload rules of a
// package rooted at dir cover. Directories listed in prune are never walked.
func Autoload(ctx context.Context, dir string, a composer.Autoload, prune ...string) ([]string, error) {
	logger := log.FromContext(ctx)
	var files []string

	for _, m := range []composer.PathMap{a.PSR4, a.PSR0} {
		for _, prefix := range sortedKeys(m) {
			for _, p := range m[prefix] {
				found, err := collect(ctx, filepath.Join(dir, p), prune, lang.PSRExtensions)
				if err != nil {
					return nil, err
				}
				files = append(files, found...)
			}
		}
	}
	for _, p := range a.Classmap {
		found, err := collect(ctx, filepath.Join(dir, p), prune, lang.ClassmapExtensions)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	for _, p := range a.Files {
		path := filepath.Join(dir, p)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			logger.Warn("autoload file not found", "path", path)
			continue
		}
		files = append(files, path)
	}

	if len(a.ExcludeFromClassmap) == 0 {
		return files, nil
	}
	excluded := ignore.CompileIgnoreLines(anchor(a.ExcludeFromClassmap)...)
	kept := files[:0]
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err == nil && excluded.MatchesPath(rel) {
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

// collect returns target itself when it is a file, or every file below it
// with one of exts when it is a directory.
func collect(ctx context.Context, target string, prune, exts []string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		log.FromContext(ctx).Warn("autoload path not found", "path", target)
		return nil, nil
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return walk(ctx, target, prune, func(rel string) bool {
		ext := strings.ToLower(filepath.Ext(rel))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	})
}

// Expand matches gitignore-style patterns against the files below root.
// Patterns are anchored at root. A pattern matching nothing is not an error.
func Expand(ctx context.Context, root string, patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		matcher := ignore.CompileIgnoreLines(anchor([]string{p})...)
		base := filepath.Join(root, staticPrefix(p))

		info, err := os.Stat(base)
		if err != nil {
			log.FromContext(ctx).Debug("scan-files pattern matched nothing", "pattern", p)
			continue
		}
		if !info.IsDir() {
			out = append(out, base)
			continue
		}
		found, err := walk(ctx, base, nil, func(string) bool { return true })
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			rel, err := filepath.Rel(root, f)
			if err == nil && matcher.MatchesPath(rel) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// staticPrefix returns the leading directories of pattern that contain no
// wildcard.
func staticPrefix(pattern string) string {
	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	var fixed []string
	for _, s := range segments {
		if strings.ContainsAny(s, "*?[") {
			break
		}
		fixed = append(fixed, s)
	}
	return filepath.Join(fixed...)
}

func anchor(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

func sortedKeys(m composer.PathMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
