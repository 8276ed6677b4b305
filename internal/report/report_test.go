package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/phobologic/reqcheck/internal/check"
	"github.com/phobologic/reqcheck/internal/model"
	"github.com/phobologic/reqcheck/internal/parse"
)

func sampleResult() *check.Result {
	return &check.Result{
		Package: "acme/app",
		Unknown: []check.Unknown{
			{Symbol: model.Symbol{Name: `Vendor\Other\Thing`, Kind: model.Class}, Guesses: []string{"vendor/other"}, Via: map[string][]string{"vendor/other": {"vendor/bar"}}},
			{Symbol: model.Symbol{Name: "mb_strlen", Kind: model.Function}, Guesses: []string{"ext-mbstring", "symfony/polyfill-mbstring"}},
			{Symbol: model.Symbol{Name: "MISSING", Kind: model.Constant}},
		},
		ParseErrors: []*parse.Error{
			{Path: "/app/src/Broken.php", Line: 4, Column: 7, Reason: "unexpected token"},
		},
		Stats: check.Stats{PackageFiles: 3, DependencyFiles: 10},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", Text, false},
		{"JSON", JSON, false},
		{" toon ", TOON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteTextClean(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, Text, &check.Result{}, Meta{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "There were no unknown symbols found.\n" {
		t.Errorf("got %q", got)
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, Text, sampleResult(), Meta{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"The following 1 files could not be parsed:",
		"/app/src/Broken.php:4:7: syntax error: unexpected token",
		"The following 3 unknown symbols were found:",
		"Unknown Symbol",
		"Guessed Dependency",
		`Vendor\Other\Thing`,
		"vendor/other (via vendor/bar)",
		"ext-mbstring",
		"symfony/polyfill-mbstring",
		"MISSING",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "could not be parsed") > strings.Index(out, "unknown symbols") {
		t.Error("parse errors should come before the table")
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, JSON, sampleResult(), Meta{Version: "1.2.3"}); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Meta struct {
			Version string `json:"version"`
			Package string `json:"package"`
			Files   struct {
				Package int `json:"package"`
			} `json:"files"`
		} `json:"_meta"`
		Unknown     map[string][]string `json:"unknown-symbols"`
		Paths       map[string][]string `json:"dependency-paths"`
		ParseErrors []struct {
			File string `json:"file"`
			Line int    `json:"line"`
		} `json:"parse-errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Meta.Version != "1.2.3" || got.Meta.Package != "acme/app" || got.Meta.Files.Package != 3 {
		t.Errorf("meta = %+v", got.Meta)
	}
	if len(got.Unknown) != 3 {
		t.Errorf("unknown = %v", got.Unknown)
	}
	if g := got.Unknown["mb_strlen"]; len(g) != 2 || g[0] != "ext-mbstring" {
		t.Errorf("mb_strlen guesses = %v", g)
	}
	if g, ok := got.Unknown["MISSING"]; !ok || g == nil {
		t.Errorf("MISSING guesses = %v, want empty list", g)
	}
	if p := got.Paths["vendor/other"]; len(p) != 1 || p[0] != "vendor/bar" {
		t.Errorf("dependency paths = %v", got.Paths)
	}
	if len(got.ParseErrors) != 1 || got.ParseErrors[0].Line != 4 {
		t.Errorf("parse errors = %+v", got.ParseErrors)
	}
	if !strings.Contains(buf.String(), `"Vendor\\Other\\Thing"`) {
		t.Errorf("symbol not encoded as expected:\n%s", buf.String())
	}
}

func TestWriteJSONClean(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, JSON, &check.Result{}, Meta{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"unknown-symbols": {}`) || !strings.Contains(out, `"parse-errors": []`) {
		t.Errorf("got %s", out)
	}
}

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "strlen", "strlen"},
		{"leading space", " x", `" x"`},
		{"trailing space", "x ", `"x "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"Null keyword", "Null", `"Null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"namespaced", `App\Foo`, `"App\\Foo"`},
		{"bracket", "a[b", `"a[b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"package", "vendor/other", "vendor/other"},
		{"guess list", "ext-json vendor/x", "ext-json vendor/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := encodeValue(tt.in); got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteTOON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Write(&buf, TOON, sampleResult(), Meta{}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		"package: acme/app",
		"unknown[3]{symbol,kind,guesses}:",
		`  "Vendor\\Other\\Thing",class,vendor/other`,
		"  mb_strlen,function,ext-mbstring symfony/polyfill-mbstring",
		`  MISSING,constant,""`,
		"parse_errors[1]{file,line,column}:",
		"  /app/src/Broken.php,4,7",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteTOONEmpty(t *testing.T) {
	t.Parallel()
	got := encodeTOON(&check.Result{})
	if got != "unknown[0]{symbol,kind,guesses}:" {
		t.Errorf("got %q", got)
	}
}
