package analyzer

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the source text covered by node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeLine returns the 1-based start line of node.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// children returns all direct children of node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if child := node.Child(uint(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// statements returns the named, non-comment children of node.
func statements(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, child := range children(node) {
		if child.IsNamed() && child.Kind() != "comment" {
			out = append(out, child)
		}
	}
	return out
}

// sameNode reports whether a and b cover the same span with the same kind.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// topLevelModule returns the leading component of a dotted module path.
func topLevelModule(dotted string) string {
	dotted = strings.TrimLeft(strings.TrimSpace(dotted), ".")
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		dotted = dotted[:i]
	}
	return strings.TrimSpace(dotted)
}

// docstring returns the cleaned docstring of a function or class body, if any.
func docstring(body *sitter.Node, source []byte) string {
	stmts := statements(body)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return ""
	}
	exprs := statements(stmts[0])
	if len(exprs) != 1 || exprs[0].Kind() != "string" {
		return ""
	}
	return cleanDoc(unquote(nodeText(exprs[0], source)))
}

// unquote strips the string prefix and quotes of a Python string literal.
func unquote(lit string) string {
	lit = strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) && len(lit) >= 2*len(q) {
			return lit[len(q) : len(lit)-len(q)]
		}
	}
	return lit
}

// cleanDoc trims a docstring and removes the common indentation of its
// continuation lines.
func cleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")
	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	if indent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= indent {
				lines[i] = lines[i][indent:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
