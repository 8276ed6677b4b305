// Package ast defines the syntax tree that symbol extraction walks.
//
// The tree keeps only what matters for symbol resolution: namespaces,
// imports, declarations, local scopes and name references. Node is a closed
// set; every variant is declared in this file.
package ast

import "github.com/phobologic/reqcheck/internal/model"

// Node is implemented by every variant below and nothing else.
type Node interface {
	node()
}

// File is the root of one parsed source file.
type File struct {
	Path  string
	Nodes []Node
}

// Namespace scopes its body under Name. Name is "" for the global namespace.
type Namespace struct {
	Name string
	Body []Node
}

// Import is one `use` clause. Name is the imported name as written
// (fully qualified by definition, possibly with a leading separator).
// Alias is the local name; it defaults to the last segment of Name.
type Import struct {
	Kind  model.SymbolKind
	Name  string
	Alias string
}

// ClassLikeKind distinguishes class-like declarations.
type ClassLikeKind string

const (
	Class     ClassLikeKind = "class"
	Interface ClassLikeKind = "interface"
	Trait     ClassLikeKind = "trait"
	Enum      ClassLikeKind = "enum"
)

// ClassLike is a class, interface, trait or enum declaration. Members holds
// the references found in its header and body; method bodies appear as
// Scope nodes.
type ClassLike struct {
	Kind    ClassLikeKind
	Name    string
	Members []Node
}

// Function is a named function declaration. Signature holds the references
// of parameters, return type and attributes; Body is local code.
type Function struct {
	Name      string
	Signature []Node
	Body      []Node
}

// Constant is a `const` declaration or a `define()` call. Literal marks a
// name that is already fully qualified and must not be namespaced.
type Constant struct {
	Name    string
	Literal bool
}

// Scope is local code: a method body, closure or arrow function.
// Declarations inside a Scope are not externally referenceable.
type Scope struct {
	Body []Node
}

// Reference is a use of a name as written in the source, before namespace
// and alias resolution.
type Reference struct {
	Kind model.SymbolKind
	Name string
}

func (*Namespace) node() {}
func (*Import) node()    {}
func (*ClassLike) node() {}
func (*Function) node()  {}
func (*Constant) node()  {}
func (*Scope) node()     {}
func (*Reference) node() {}
