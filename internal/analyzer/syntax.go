package analyzer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode checks that source is UTF-8 text and strips a leading BOM.
func decode(source []byte) ([]byte, error) {
	source = bytes.TrimPrefix(source, utf8BOM)
	if i := bytes.IndexByte(source, 0); i >= 0 {
		return nil, &EncodingError{Offset: i, Reason: "source contains a NUL byte"}
	}
	if !utf8.Valid(source) {
		return nil, &EncodingError{Offset: firstInvalidUTF8(source), Reason: "invalid UTF-8 sequence"}
	}
	return source, nil
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// checkSyntax returns the first syntax problem found, or nil.
// tree-sitter recovers from every error, so ERROR and MISSING nodes, blocks
// without statements, inconsistent indentation and constructs the grammar
// accepts but Python 3 rejects are turned into a ParseError here.
func checkSyntax(root *sitter.Node, source []byte) error {
	if root.HasError() {
		if err := firstErrorNode(root, source); err != nil {
			return err
		}
		return &ParseError{Line: 1, Column: 1, Message: "invalid syntax"}
	}
	if err := emptyBlock(root); err != nil {
		return err
	}
	if err := checkIndentation(root, source, nil); err != nil {
		return err
	}
	return checkStatements(root, source)
}

func firstErrorNode(node *sitter.Node, source []byte) *ParseError {
	if node.IsMissing() {
		return parseErrorAt(node, fmt.Sprintf("missing %q", node.Kind()))
	}
	if node.IsError() {
		// Prefer a more precise location inside the error node.
		for _, child := range children(node) {
			if child.IsMissing() || child.IsError() || child.HasError() {
				if err := firstErrorNode(child, source); err != nil {
					return err
				}
			}
		}
		return parseErrorAt(node, "invalid syntax near "+snippet(nodeText(node, source)))
	}
	for _, child := range children(node) {
		if child.IsMissing() || child.IsError() || child.HasError() {
			if err := firstErrorNode(child, source); err != nil {
				return err
			}
		}
	}
	return nil
}

// emptyBlock reports the first block that has no statements, which Python
// rejects as "expected an indented block".
func emptyBlock(node *sitter.Node) error {
	if node.Kind() == "block" && len(statements(node)) == 0 {
		msg := "expected an indented block"
		if parent := node.Parent(); parent != nil {
			msg = fmt.Sprintf("expected an indented block after %s on line %d",
				strings.ReplaceAll(parent.Kind(), "_", " "), nodeLine(parent))
		}
		return parseErrorAt(node, msg)
	}
	for _, child := range children(node) {
		if err := emptyBlock(child); err != nil {
			return err
		}
	}
	return nil
}

// checkIndentation verifies that every statement starting a line in a block
// sits at the column of the block's first statement, and that a shallower
// statement lands on the column of an enclosing block. Module statements sit
// at column 0. outer holds the columns of the enclosing blocks.
func checkIndentation(node *sitter.Node, source []byte, outer []int) error {
	if node.Kind() == "module" || node.Kind() == "block" {
		want := 0
		stmts := statements(node)
		if node.Kind() == "block" && len(stmts) > 0 {
			want = int(stmts[0].StartPosition().Column)
		}
		for _, stmt := range stmts {
			if !startsLine(stmt, source) {
				continue
			}
			col := int(stmt.StartPosition().Column)
			switch {
			case col == want:
			case col > want:
				return parseErrorAt(stmt, "unexpected indent")
			case containsInt(outer, col):
				return parseErrorAt(stmt, "unexpected dedent")
			default:
				return parseErrorAt(stmt, "unindent does not match any outer indentation level")
			}
		}
		outer = append(outer[:len(outer):len(outer)], want)
	}
	for _, child := range children(node) {
		if err := checkIndentation(child, source, outer); err != nil {
			return err
		}
	}
	return nil
}

// startsLine reports whether only whitespace precedes node on its line.
func startsLine(node *sitter.Node, source []byte) bool {
	start := int(node.StartByte())
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	return len(bytes.TrimLeft(source[lineStart:start], " \t\f")) == 0
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// checkStatements rejects constructs the grammar parses but Python 3 does not:
// Python 2 print and exec statements, an unparenthesized assignment expression
// used as a statement, and a required parameter after a defaulted one.
func checkStatements(node *sitter.Node, source []byte) error {
	switch node.Kind() {
	case "print_statement":
		return parseErrorAt(node, "missing parentheses in call to 'print'")
	case "exec_statement":
		return parseErrorAt(node, "missing parentheses in call to 'exec'")
	case "expression_statement":
		for _, child := range statements(node) {
			if child.Kind() == "named_expression" {
				return parseErrorAt(child, "invalid syntax: unparenthesized assignment expression")
			}
		}
	case "parameters", "lambda_parameters":
		if err := checkParameterOrder(node); err != nil {
			return err
		}
	}
	for _, child := range children(node) {
		if err := checkStatements(child, source); err != nil {
			return err
		}
	}
	return nil
}

// checkParameterOrder rejects a parameter without a default that follows one
// with a default. Parameters after * or *args are keyword-only and exempt.
func checkParameterOrder(params *sitter.Node) error {
	seenDefault := false
	for _, p := range statements(params) {
		switch p.Kind() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return nil
		case "typed_parameter":
			if first := p.NamedChild(0); first != nil &&
				(first.Kind() == "list_splat_pattern" || first.Kind() == "dictionary_splat_pattern") {
				return nil
			}
			if seenDefault {
				return parseErrorAt(p, "non-default argument follows default argument")
			}
		case "identifier":
			if seenDefault {
				return parseErrorAt(p, "non-default argument follows default argument")
			}
		}
	}
	return nil
}

func parseErrorAt(node *sitter.Node, msg string) *ParseError {
	pos := node.StartPosition()
	return &ParseError{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Message: msg,
	}
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	return fmt.Sprintf("%q", text)
}
