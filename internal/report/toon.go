package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/reqcheck/internal/check"
)

// TOON (Token-Oriented Object Notation) keeps the report compact for
// language-model consumers while staying line-oriented.

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

func encodeTOON(res *check.Result) string {
	var parts []string
	if res.Package != "" {
		parts = append(parts, "package: "+encodeValue(res.Package))
	}

	unknown := make([][]string, 0, len(res.Unknown))
	for _, u := range res.Unknown {
		unknown = append(unknown, []string{
			u.Symbol.Name,
			string(u.Symbol.Kind),
			strings.Join(u.Guesses, " "),
		})
	}
	parts = append(parts, formatTabular("unknown", []string{"symbol", "kind", "guesses"}, unknown))

	if len(res.ParseErrors) > 0 {
		var rows [][]string
		for _, e := range res.ParseErrors {
			rows = append(rows, []string{e.Path, strconv.Itoa(e.Line), strconv.Itoa(e.Column)})
		}
		parts = append(parts, formatTabular("parse_errors", []string{"file", "line", "column"}, rows))
	}
	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
