package parse

import (
	"context"
	"errors"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/lang"
	"github.com/phobologic/reqcheck/internal/model"
)

// Policy decides what happens when a file fails to parse.
type Policy int

const (
	// Strict stops at the first syntax error and returns it.
	Strict Policy = iota
	// Collect skips unparseable files and records their errors.
	Collect
)

func (p Policy) String() string {
	if p == Collect {
		return "collect"
	}
	return "strict"
}

// Provider yields syntax trees for a list of files.
type Provider struct {
	Policy  Policy
	Workers int
}

// NewProvider returns a provider using one worker per CPU.
func NewProvider(policy Policy) *Provider {
	return &Provider{Policy: policy, Workers: runtime.GOMAXPROCS(0)}
}

// Trees yields one tree per file in order. Iteration can be restarted; each
// run reads the files again. Under Strict the sequence ends after the first
// error it yields. Under Collect syntax errors are yielded as (nil, *Error)
// and iteration continues.
func (p *Provider) Trees(ctx context.Context, files []string) iter.Seq2[*ast.File, error] {
	return func(yield func(*ast.File, error) bool) {
		parser := lang.Languages[lang.PHP].NewParser()
		defer parser.Close()

		for _, path := range files {
			f, err := ParseFile(ctx, parser, path)
			if err != nil {
				var perr *Error
				stop := p.Policy == Strict || !errors.As(err, &perr)
				if !yield(nil, err) || stop {
					return
				}
				continue
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// Extraction is the merged result of running an extractor over many files.
type Extraction struct {
	Symbols *model.SymbolSet
	Errors  []*Error
}

// Extract parses files concurrently and applies fn to every tree. Results
// are merged in input order regardless of which worker finished first.
// Syntax errors abort the run under Strict and are collected under Collect.
// Read errors and cancellation always abort.
func (p *Provider) Extract(ctx context.Context, files []string, fn func(*ast.File) *model.SymbolSet) (*Extraction, error) {
	workers := p.Workers
	if workers > len(files) {
		workers = len(files)
	}
	if workers <= 1 {
		return p.extractSequential(ctx, files, fn)
	}

	type result struct {
		symbols *model.SymbolSet
		err     *Error
	}
	results := make([]result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	work := make(chan int)

	g.Go(func() error {
		defer close(work)
		for i := range files {
			select {
			case work <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			// Each goroutine gets its own parser
			parser := lang.Languages[lang.PHP].NewParser()
			defer parser.Close()

			for idx := range work {
				f, err := ParseFile(ctx, parser, files[idx])
				if err != nil {
					var perr *Error
					if p.Policy == Collect && errors.As(err, &perr) {
						results[idx].err = perr
						continue
					}
					return err
				}
				results[idx].symbols = fn(f)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Extraction{Symbols: model.NewSymbolSet()}
	for _, r := range results {
		if r.err != nil {
			out.Errors = append(out.Errors, r.err)
			continue
		}
		out.Symbols.Union(r.symbols)
	}
	return out, nil
}

func (p *Provider) extractSequential(ctx context.Context, files []string, fn func(*ast.File) *model.SymbolSet) (*Extraction, error) {
	out := &Extraction{Symbols: model.NewSymbolSet()}
	for f, err := range p.Trees(ctx, files) {
		if err != nil {
			var perr *Error
			if p.Policy == Collect && errors.As(err, &perr) {
				out.Errors = append(out.Errors, perr)
				continue
			}
			return nil, err
		}
		out.Symbols.Union(fn(f))
	}
	return out, nil
}
