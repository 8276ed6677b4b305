package report

import (
	"encoding/json"
	"io"

	"github.com/phobologic/reqcheck/internal/check"
)

type jsonReport struct {
	Meta            jsonMeta            `json:"_meta"`
	UnknownSymbols  map[string][]string `json:"unknown-symbols"`
	DependencyPaths map[string][]string `json:"dependency-paths,omitempty"`
	ParseErrors     []jsonParseError    `json:"parse-errors"`
}

type jsonMeta struct {
	Version string    `json:"version,omitempty"`
	Package string    `json:"package,omitempty"`
	Files   jsonFiles `json:"files"`
	Elapsed string    `json:"elapsed"`
}

type jsonFiles struct {
	Package      int `json:"package"`
	Dependencies int `json:"dependencies"`
	Extra        int `json:"extra"`
}

type jsonParseError struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w io.Writer, res *check.Result, meta Meta) error {
	out := jsonReport{
		Meta: jsonMeta{
			Version: meta.Version,
			Package: res.Package,
			Files: jsonFiles{
				Package:      res.Stats.PackageFiles,
				Dependencies: res.Stats.DependencyFiles,
				Extra:        res.Stats.ExtraFiles,
			},
			Elapsed: res.Stats.Elapsed.String(),
		},
		UnknownSymbols: make(map[string][]string, len(res.Unknown)),
		ParseErrors:    make([]jsonParseError, 0, len(res.ParseErrors)),
	}
	for _, u := range res.Unknown {
		out.UnknownSymbols[u.Symbol.Name] = guessesOf(u)
		for pkg, via := range u.Via {
			if out.DependencyPaths == nil {
				out.DependencyPaths = make(map[string][]string)
			}
			out.DependencyPaths[pkg] = via
		}
	}
	for _, e := range res.ParseErrors {
		out.ParseErrors = append(out.ParseErrors, jsonParseError{
			File:   e.Path,
			Line:   e.Line,
			Column: e.Column,
			Reason: e.Reason,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
