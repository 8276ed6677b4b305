package symbols

import (
	"strings"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/model"
)

// Used returns every symbol f references, normalized to its fully qualified
// name with the namespace and imports in effect at each reference.
func Used(f *ast.File) *model.SymbolSet {
	out := model.NewSymbolSet()
	if f != nil {
		collectUsed(f.Nodes, InNamespace(""), out)
	}
	return out
}

// collectUsed walks one statement list. Imports extend the context for the
// statements that follow them in the same list.
func collectUsed(nodes []ast.Node, ctx Context, out *model.SymbolSet) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Namespace:
			collectUsed(n.Body, InNamespace(n.Name), out)
		case *ast.Import:
			out.Add(model.Symbol{Name: strings.TrimPrefix(n.Name, `\`), Kind: n.Kind})
			ctx = ctx.WithImport(n)
		case *ast.ClassLike:
			collectUsed(n.Members, ctx, out)
		case *ast.Function:
			collectUsed(n.Signature, ctx, out)
			collectUsed(n.Body, ctx, out)
		case *ast.Scope:
			collectUsed(n.Body, ctx, out)
		case *ast.Reference:
			if name := ctx.Resolve(n.Name, n.Kind); name != "" {
				out.Add(model.Symbol{Name: name, Kind: n.Kind})
			}
		case *ast.Constant:
		}
	}
}
