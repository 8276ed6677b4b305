// Package parse turns PHP source files into syntax trees using tree-sitter.
package parse

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/lang"
)

// Error reports a syntax error in one file.
type Error struct {
	Path   string
	Line   int
	Column int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Path, e.Line, e.Column, e.Reason)
}

// ParseFile reads path and converts it into a syntax tree.
// The parser must be created for the PHP language and not be shared.
// A tree with syntax errors is reported as *Error.
func ParseFile(ctx context.Context, parser *sitter.Parser, path string) (*ast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseSource(ctx, parser, source, path)
}

// ParseSource converts source into a syntax tree. path is used only for
// ast.File.Path and error messages.
func ParseSource(ctx context.Context, parser *sitter.Parser, source []byte, path string) (*ast.File, error) {
	if len(source) == 0 {
		return &ast.File{Path: path}, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstError(root); bad != nil {
		return nil, &Error{
			Path:   path,
			Line:   int(bad.StartPoint().Row) + 1,
			Column: int(bad.StartPoint().Column) + 1,
			Reason: describe(bad, source),
		}
	}

	return Convert(root, source, path), nil
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return n
}

func describe(n *sitter.Node, source []byte) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %q", n.Type())
	}
	text := strings.TrimSpace(lang.NodeText(n, source))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	if text == "" {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected %q", text)
}
