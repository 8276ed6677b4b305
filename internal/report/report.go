// Package report renders a check result for people and for tools.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/phobologic/reqcheck/internal/check"
)

// Format selects a renderer.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	TOON Format = "toon"
)

// Formats lists every supported format.
var Formats = []Format{Text, JSON, TOON}

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or toon)", s)
}

// Meta identifies the run in machine-readable output.
type Meta struct {
	Version string
}

// Write renders res to w in format f.
func Write(w io.Writer, f Format, res *check.Result, meta Meta) error {
	switch f {
	case Text, "":
		return writeText(w, res)
	case JSON:
		return writeJSON(w, res, meta)
	case TOON:
		_, err := fmt.Fprintln(w, encodeTOON(res))
		return err
	}
	return fmt.Errorf("unknown output format %q", f)
}

func guessesOf(u check.Unknown) []string {
	if u.Guesses == nil {
		return []string{}
	}
	return u.Guesses
}
