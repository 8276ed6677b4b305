// Package check runs the whole analysis: locate files, extract defined and
// used symbols, subtract everything known and guess where the rest lives.
package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/reqcheck/internal/composer"
	"github.com/phobologic/reqcheck/internal/config"
	"github.com/phobologic/reqcheck/internal/discover"
	"github.com/phobologic/reqcheck/internal/graph"
	"github.com/phobologic/reqcheck/internal/guess"
	"github.com/phobologic/reqcheck/internal/intrinsic"
	"github.com/phobologic/reqcheck/internal/model"
	"github.com/phobologic/reqcheck/internal/parse"
	"github.com/phobologic/reqcheck/internal/resolve"
	"github.com/phobologic/reqcheck/internal/symbols"
)

// ErrConfiguration marks failures caused by the input rather than by the
// analysis: a missing or invalid manifest or config file, or a package with
// no code to check.
var ErrConfiguration = errors.New("configuration error")

// Options configures a run.
type Options struct {
	// ManifestPath is the composer.json of the package to check.
	ManifestPath string
	// Config defaults to config.Default().
	Config *config.Config
	// Policy decides whether syntax errors abort the run.
	Policy parse.Policy
	// Workers is the number of parsers per pass. Zero means one per CPU.
	Workers int
	// Intrinsics defaults to the builtin extension table.
	Intrinsics intrinsic.Provider
}

// Unknown is a used symbol nothing guarantees, with candidate packages.
type Unknown struct {
	Symbol  model.Symbol
	Guesses []string
	// Via maps a guessed package that is installed only as an indirect
	// dependency to the require chain that pulls it in.
	Via map[string][]string
}

// Stats counts what a run looked at.
type Stats struct {
	PackageFiles    int
	DependencyFiles int
	ExtraFiles      int
	Defined         int
	Used            int
	Intrinsic       int
	Elapsed         time.Duration
}

// Result is the outcome of a completed run.
type Result struct {
	Package     string
	Unknown     []Unknown
	ParseErrors []*parse.Error
	Stats       Stats
}

// Clean reports whether no unknown symbols were found.
func (r *Result) Clean() bool {
	return len(r.Unknown) == 0
}

// Run checks the package described by opts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := log.FromContext(ctx)

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	manifest, err := composer.Load(opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	installed, err := composer.LoadInstalled(manifest.VendorDir())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	sets, err := discover.Locate(ctx, discover.Request{
		Manifest:  manifest,
		Installed: installed,
		ScanFiles: cfg.ScanFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("locating files: %w", err)
	}

	provider := &parse.Provider{Policy: opts.Policy, Workers: opts.Workers}
	if provider.Workers <= 0 {
		provider.Workers = parse.NewProvider(opts.Policy).Workers
	}
	logger.Debug("parsing", "policy", provider.Policy, "workers", provider.Workers)

	intrinsics := opts.Intrinsics
	if intrinsics == nil {
		intrinsics, err = intrinsic.Builtin()
		if err != nil {
			return nil, err
		}
	}
	extensions := append(slices.Clone(cfg.PHPCoreExtensions), manifest.Extensions()...)

	var defined, used *parse.Extraction
	var builtin *model.SymbolSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files := model.UnionFiles(sets.Package, sets.Dependencies, sets.Extra)
		logger.Debug("collecting definitions",
			"package", files.Count(model.PackageFile),
			"dependency", files.Count(model.DependencyFile),
			"extra", files.Count(model.ExtraFile))
		var err error
		defined, err = provider.Extract(gctx, files.Paths(), symbols.Defined)
		return err
	})
	g.Go(func() error {
		files := model.UnionFiles(sets.Package, sets.Extra)
		var err error
		used, err = provider.Extract(gctx, files.Paths(), symbols.Used)
		return err
	})
	g.Go(func() error {
		var err error
		builtin, err = intrinsic.Resolve(gctx, intrinsics, extensions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	whitelist := model.NamesOf(model.Class, cfg.SymbolWhitelist...)
	unresolved, err := resolve.Unresolved(used.Symbols, defined.Symbols, builtin, whitelist)
	if errors.Is(err, resolve.ErrNoUsedSymbols) {
		return nil, fmt.Errorf("%w: %w: check the autoload section of %s", ErrConfiguration, err, opts.ManifestPath)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Package:     manifest.Name,
		ParseErrors: mergeParseErrors(defined.Errors, used.Errors),
		Stats: Stats{
			PackageFiles:    len(sets.Package),
			DependencyFiles: len(sets.Dependencies),
			ExtraFiles:      len(sets.Extra),
			Defined:         defined.Symbols.Len(),
			Used:            used.Symbols.Len(),
			Intrinsic:       builtin.Len(),
		},
	}

	if len(unresolved) > 0 {
		guesser := guesserFor(ctx, installed, intrinsics, extensions)
		requires := graph.Build(manifest, installed)
		for _, sym := range unresolved {
			u := Unknown{Symbol: sym, Guesses: slices.Collect(guesser.Guess(sym.Name))}
			for _, pkg := range u.Guesses {
				if via, ok := requires.Path(pkg); ok && len(via) > 0 {
					if u.Via == nil {
						u.Via = make(map[string][]string)
					}
					u.Via[pkg] = via
				}
			}
			res.Unknown = append(res.Unknown, u)
		}
	}

	res.Stats.Elapsed = time.Since(start)
	logger.Debug("check finished",
		"defined", res.Stats.Defined,
		"used", res.Stats.Used,
		"intrinsic", res.Stats.Intrinsic,
		"unknown", len(res.Unknown),
		"elapsed", res.Stats.Elapsed.Round(time.Millisecond))
	return res, nil
}

func guesserFor(ctx context.Context, installed *composer.Installed, p intrinsic.Provider, declared []string) guess.Guesser {
	chain := guess.Chain{guess.NewRegistry(installed)}
	ext, err := guess.NewExtensions(ctx, p, declared)
	if err != nil {
		log.FromContext(ctx).Debug("extension guesses unavailable", "err", err)
		return chain
	}
	return append(chain, ext)
}

// mergeParseErrors keeps one error per file, sorted by path.
func mergeParseErrors(lists ...[]*parse.Error) []*parse.Error {
	byPath := make(map[string]*parse.Error)
	for _, list := range lists {
		for _, e := range list {
			if _, ok := byPath[e.Path]; !ok {
				byPath[e.Path] = e
			}
		}
	}
	out := make([]*parse.Error, 0, len(byPath))
	for _, e := range byPath {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
