package parse

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/reqcheck/internal/ast"
	"github.com/phobologic/reqcheck/internal/lang"
	"github.com/phobologic/reqcheck/internal/model"
)

var classLikes = map[string]ast.ClassLikeKind{
	"class_declaration":     ast.Class,
	"interface_declaration": ast.Interface,
	"trait_declaration":     ast.Trait,
	"enum_declaration":      ast.Enum,
}

// scopes are nodes whose body is local code.
var scopes = map[string]struct{}{
	"method_declaration":                     {},
	"anonymous_function":                     {},
	"anonymous_function_creation_expression": {},
	"arrow_function":                         {},
}

// typeContexts hold class names as direct children.
var typeContexts = map[string]struct{}{
	"named_type":             {},
	"type_name":              {},
	"type_list":              {},
	"base_clause":            {},
	"class_interface_clause": {},
	"use_declaration":        {},
	"attribute":              {},
}

// constantContexts are expression positions where a bare name is a
// constant reference.
var constantContexts = map[string]struct{}{
	"argument":                        {},
	"arguments":                       {},
	"array_element_initializer":       {},
	"arrow_function":                  {},
	"assignment_expression":           {},
	"augmented_assignment_expression": {},
	"binary_expression":               {},
	"case_statement":                  {},
	"cast_expression":                 {},
	"clone_expression":                {},
	"conditional_expression":          {},
	"const_element":                   {},
	"echo_statement":                  {},
	"enum_case":                       {},
	"error_suppression_expression":    {},
	"exit_statement":                  {},
	"expression_statement":            {},
	"for_statement":                   {},
	"foreach_statement":               {},
	"include_expression":              {},
	"include_once_expression":         {},
	"match_condition_list":            {},
	"match_conditional_expression":    {},
	"match_default_expression":        {},
	"pair":                            {},
	"parenthesized_expression":        {},
	"print_intrinsic":                 {},
	"property_element":                {},
	"property_initializer":            {},
	"property_promotion_parameter":    {},
	"reference_assignment_expression": {},
	"require_expression":              {},
	"require_once_expression":         {},
	"return_statement":                {},
	"sequence_expression":             {},
	"simple_parameter":                {},
	"static_variable_declaration":     {},
	"subscript_expression":            {},
	"throw_expression":                {},
	"unary_op_expression":             {},
	"yield_expression":                {},
}

var magicConstant = regexp.MustCompile(`^__[A-Za-z_]+__$`)

// Convert builds an ast.File from a tree-sitter PHP program node.
func Convert(root *sitter.Node, source []byte, path string) *ast.File {
	c := &converter{src: source}
	return &ast.File{Path: path, Nodes: c.statements(root)}
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	return lang.StripSpace(lang.NodeText(n, c.src))
}

// statements converts a statement list. Statements that follow an unbraced
// namespace declaration belong to that namespace.
func (c *converter) statements(n *sitter.Node) []ast.Node {
	var out []ast.Node
	var current *ast.Namespace
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "namespace_definition" {
			ns := &ast.Namespace{}
			if name := c.field(child, "name", "namespace_name"); name != nil {
				ns.Name = strings.Trim(c.text(name), `\`)
			}
			out = append(out, ns)
			if body := c.field(child, "body", "compound_statement"); body != nil {
				ns.Body = c.statements(body)
				current = nil
			} else {
				current = ns
			}
			continue
		}
		nodes := c.convert(child)
		if current != nil {
			current.Body = append(current.Body, nodes...)
		} else {
			out = append(out, nodes...)
		}
	}
	return out
}

func (c *converter) convert(n *sitter.Node) []ast.Node {
	typ := n.Type()
	if kind, ok := classLikes[typ]; ok {
		return c.classLike(n, kind)
	}
	if _, ok := scopes[typ]; ok {
		return []ast.Node{&ast.Scope{Body: c.children(n)}}
	}
	if _, ok := typeContexts[typ]; ok {
		return c.classNames(n)
	}

	switch typ {
	case "namespace_use_declaration":
		return c.useDeclaration(n)
	case "function_definition":
		return c.function(n)
	case "const_declaration":
		return c.constDeclaration(n)
	case "function_call_expression":
		return c.functionCall(n)
	case "object_creation_expression":
		return c.objectCreation(n)
	case "scoped_call_expression", "class_constant_access_expression", "scoped_property_access_expression":
		return c.scoped(n)
	case "binary_expression":
		return c.binary(n)
	case "compound_statement", "program":
		return c.statements(n)
	case "name", "qualified_name", "variable_name", "comment", "text", "php_tag":
		return nil
	}
	return c.children(n)
}

// children converts every named child. Bare names become constant
// references when n is an expression context.
func (c *converter) children(n *sitter.Node) []ast.Node {
	_, constants := constantContexts[n.Type()]
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if isName(child) {
			if constants && !c.isLabel(n, child, i) {
				out = append(out, c.reference(model.Constant, child)...)
			}
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

// isLabel reports whether the name at index i of parent names the construct
// itself rather than referencing a constant.
func (c *converter) isLabel(parent, child *sitter.Node, i int) bool {
	switch parent.Type() {
	case "const_element":
		return i == 0
	case "argument":
		return sameNode(parent.ChildByFieldName("name"), child)
	case "enum_case":
		if f := parent.ChildByFieldName("name"); f != nil {
			return sameNode(f, child)
		}
		return sameNode(firstName(parent), child)
	}
	return false
}

func (c *converter) reference(kind model.SymbolKind, n *sitter.Node) []ast.Node {
	name := c.text(n)
	if name == "" {
		return nil
	}
	if kind == model.Constant && magicConstant.MatchString(name) {
		return nil
	}
	return []ast.Node{&ast.Reference{Kind: kind, Name: name}}
}

func (c *converter) classNames(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if isName(child) {
			out = append(out, c.reference(model.Class, child)...)
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

func (c *converter) classLike(n *sitter.Node, kind ast.ClassLikeKind) []ast.Node {
	decl := &ast.ClassLike{Kind: kind}
	nameNode := c.field(n, "name", "name")
	if nameNode != nil {
		decl.Name = c.text(nameNode)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if sameNode(child, nameNode) {
			continue
		}
		decl.Members = append(decl.Members, c.convert(child)...)
	}
	return []ast.Node{decl}
}

func (c *converter) function(n *sitter.Node) []ast.Node {
	fn := &ast.Function{}
	nameNode := c.field(n, "name", "name")
	if nameNode != nil {
		fn.Name = c.text(nameNode)
	}
	body := c.field(n, "body", "compound_statement")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case sameNode(child, nameNode):
		case sameNode(child, body):
			fn.Body = c.statements(child)
		default:
			fn.Signature = append(fn.Signature, c.convert(child)...)
		}
	}
	return []ast.Node{fn}
}

func (c *converter) constDeclaration(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "const_element" {
			out = append(out, c.convert(child)...)
			continue
		}
		if name := firstName(child); name != nil {
			out = append(out, &ast.Constant{Name: c.text(name)})
		}
		out = append(out, c.children(child)...)
	}
	return out
}

func (c *converter) functionCall(n *sitter.Node) []ast.Node {
	target := n.ChildByFieldName("function")
	if target == nil && n.NamedChildCount() > 0 {
		target = n.NamedChild(0)
	}

	var out []ast.Node
	if target != nil && isName(target) {
		name := c.text(target)
		out = append(out, c.reference(model.Function, target)...)
		if strings.EqualFold(strings.TrimPrefix(name, `\`), "define") {
			if constant := c.defineName(n); constant != "" {
				out = append(out, &ast.Constant{Name: constant, Literal: true})
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if sameNode(child, target) && isName(child) {
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

// defineName returns the constant name of define('NAME', ...) when it is a
// plain string literal.
func (c *converter) defineName(call *sitter.Node) string {
	args := c.field(call, "arguments", "arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	first := args.NamedChild(0)
	if first.Type() == "argument" && first.NamedChildCount() > 0 {
		first = first.NamedChild(int(first.NamedChildCount()) - 1)
	}
	if first.Type() != "string" && first.Type() != "encapsed_string" {
		return ""
	}
	raw := lang.NodeText(first, c.src)
	if len(raw) < 2 || strings.ContainsRune(raw, '$') {
		return ""
	}
	q := raw[0]
	if (q != '\'' && q != '"') || raw[len(raw)-1] != q {
		return ""
	}
	name := strings.ReplaceAll(raw[1:len(raw)-1], `\\`, `\`)
	return strings.TrimPrefix(name, `\`)
}

func (c *converter) objectCreation(n *sitter.Node) []ast.Node {
	var out []ast.Node
	seenTarget := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if isName(child) {
			if !seenTarget {
				out = append(out, c.reference(model.Class, child)...)
			}
			seenTarget = true
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

// scoped handles Foo::bar(), Foo::BAR and Foo::$bar. Only the scope is a
// class reference; the member name is not a symbol.
func (c *converter) scoped(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if isName(child) {
			if i == 0 {
				out = append(out, c.reference(model.Class, child)...)
			}
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

func (c *converter) binary(n *sitter.Node) []ast.Node {
	instanceOf := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "instanceof" {
			instanceOf = true
			break
		}
	}
	if !instanceOf {
		return c.children(n)
	}

	right := n.ChildByFieldName("right")
	if right == nil && n.NamedChildCount() > 0 {
		right = n.NamedChild(int(n.NamedChildCount()) - 1)
	}
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case isName(child) && sameNode(child, right):
			out = append(out, c.reference(model.Class, child)...)
		case isName(child):
			out = append(out, c.reference(model.Constant, child)...)
		default:
			out = append(out, c.convert(child)...)
		}
	}
	return out
}

func (c *converter) useDeclaration(n *sitter.Node) []ast.Node {
	kind := useKind(n, model.Class)
	prefix := ""
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "namespace_name", "namespace_name_as_prefix":
			prefix = strings.Trim(c.text(child), `\`)
		case "namespace_use_clause", "namespace_use_group_clause":
			out = append(out, c.useClause(child, prefix, kind))
		case "namespace_use_group":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				clause := child.NamedChild(j)
				switch clause.Type() {
				case "namespace_use_clause", "namespace_use_group_clause":
					out = append(out, c.useClause(clause, prefix, kind))
				}
			}
		}
	}
	return out
}

func (c *converter) useClause(n *sitter.Node, prefix string, kind model.SymbolKind) ast.Node {
	kind = useKind(n, kind)
	var name, alias string
	afterAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "as":
			afterAs = true
		case "name", "qualified_name", "namespace_name":
			if afterAs {
				alias = c.text(child)
			} else if name == "" {
				name = c.text(child)
			}
		case "namespace_aliasing_clause":
			if a := firstName(child); a != nil {
				alias = c.text(a)
			}
		}
	}

	full := strings.TrimPrefix(name, `\`)
	if prefix != "" {
		full = prefix + `\` + full
	}
	if alias == "" {
		alias = lastSegment(full)
	}
	return &ast.Import{Kind: kind, Name: full, Alias: alias}
}

// useKind returns the import kind declared by a function or const keyword
// among the direct children of n, or def.
func useKind(n *sitter.Node, def model.SymbolKind) model.SymbolKind {
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "function":
			return model.Function
		case "const":
			return model.Constant
		}
	}
	return def
}

// field returns the child stored under the grammar field name, falling back
// to the first named child of type typ for grammar versions without fields.
func (c *converter) field(n *sitter.Node, name, typ string) *sitter.Node {
	if f := n.ChildByFieldName(name); f != nil {
		return f
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func isName(n *sitter.Node) bool {
	switch n.Type() {
	case "name", "qualified_name":
		return true
	}
	return false
}

func firstName(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "name" {
			return child
		}
	}
	return nil
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}
