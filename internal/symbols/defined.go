package symbols

import (
	"strings"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/model"
)

// Defined returns every symbol f declares at file or namespace scope.
// Declarations inside function bodies, method bodies and closures are not
// reachable from other packages and are skipped.
func Defined(f *ast.File) *model.SymbolSet {
	out := model.NewSymbolSet()
	if f != nil {
		collectDefined(f.Nodes, "", out)
	}
	return out
}

func collectDefined(nodes []ast.Node, ns string, out *model.SymbolSet) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.Namespace:
			collectDefined(n.Body, strings.Trim(n.Name, `\`), out)
		case *ast.ClassLike:
			if n.Name != "" {
				out.Add(model.Symbol{Name: join(ns, n.Name), Kind: model.Class})
			}
		case *ast.Function:
			if n.Name != "" {
				out.Add(model.Symbol{Name: join(ns, n.Name), Kind: model.Function})
			}
		case *ast.Constant:
			name := n.Name
			if n.Literal {
				name = strings.TrimPrefix(name, `\`)
			} else {
				name = join(ns, name)
			}
			out.Add(model.Symbol{Name: name, Kind: model.Constant})
		case *ast.Scope, *ast.Import, *ast.Reference:
		}
	}
}

func join(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + `\` + name
}
