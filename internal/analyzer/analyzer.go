// Package analyzer performs single-pass structural analysis of Python source.
//
// The analyzer parses source text with tree-sitter, rejects anything that is
// not valid Python, and folds one depth-first walk of the tree into a Record:
// functions, classes, a branch-count complexity indicator, and imported
// top-level modules.
package analyzer

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Analyzer analyzes Python source. The zero value is not usable; call New.
// An Analyzer holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	language *sitter.Language
}

// New creates an Analyzer for the Python grammar.
func New() *Analyzer {
	return &Analyzer{language: sitter.NewLanguage(python.Language())}
}

var defaultAnalyzer = New()

// Analyze analyzes source with the default Analyzer.
func Analyze(source string) (*Record, error) {
	return defaultAnalyzer.Analyze(source)
}

// AnalyzeBytes analyzes raw file content with the default Analyzer.
func AnalyzeBytes(source []byte) (*Record, error) {
	return defaultAnalyzer.AnalyzeBytes(source)
}

// Analyze analyzes one source unit.
func (a *Analyzer) Analyze(source string) (*Record, error) {
	return a.AnalyzeBytes([]byte(source))
}

// AnalyzeBytes validates that source is text, parses it and walks the tree.
// It returns *EncodingError or *ParseError on bad input and never a partial Record.
func (a *Analyzer) AnalyzeBytes(source []byte) (*Record, error) {
	text, err := decode(source)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.language); err != nil {
		return nil, fmt.Errorf("failed to load python grammar: %w", err)
	}

	tree := parser.Parse(text, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse python source")
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := checkSyntax(root, text); err != nil {
		return nil, err
	}

	t := visit(root, text, scope{})

	return &Record{
		Functions:  t.functions,
		Classes:    t.classes,
		Complexity: 1 + t.branches,
		Imports:    t.imports,
		Lines:      countLines(text),
	}, nil
}

// tally is the partial result of visiting one subtree.
type tally struct {
	functions []FunctionRecord
	classes   []ClassRecord
	imports   ImportSet
	branches  int
}

// merge appends o after t, preserving source order.
func (t *tally) merge(o tally) {
	t.functions = append(t.functions, o.functions...)
	t.classes = append(t.classes, o.classes...)
	t.imports = t.imports.Merge(o.imports)
	t.branches += o.branches
}

func newTally() tally {
	return tally{
		functions: []FunctionRecord{},
		classes:   []ClassRecord{},
		imports:   ImportSet{},
	}
}

// scope carries what a node needs to know about its immediate parent.
type scope struct {
	classBody  bool     // node is a direct statement of a class body
	decorators []string // decorators applied to the definition being visited
	boolChain  string   // operator of the enclosing boolean_operator when node is its left operand
}

// visit folds the subtree rooted at node into a tally.
func visit(node *sitter.Node, source []byte, sc scope) tally {
	t := newTally()
	kind := classify(node.Kind())

	switch kind {
	case kindFunction:
		t.functions = append(t.functions, functionRecord(node, source, sc))
		t.merge(visitChildren(node, source))
		return t

	case kindClass:
		t.classes = append(t.classes, classRecord(node, source))
		for _, child := range children(node) {
			if sameNode(child, node.ChildByFieldName("body")) {
				for _, stmt := range children(child) {
					t.merge(visit(stmt, source, scope{classBody: true}))
				}
				continue
			}
			t.merge(visit(child, source, scope{}))
		}
		return t

	case kindDecorated:
		definition := node.ChildByFieldName("definition")
		decorators := decoratorNames(node, source)
		for _, child := range children(node) {
			if sameNode(child, definition) {
				t.merge(visit(child, source, scope{classBody: sc.classBody, decorators: decorators}))
				continue
			}
			t.merge(visit(child, source, scope{}))
		}
		return t

	case kindBoolean:
		op := nodeText(node.ChildByFieldName("operator"), source)
		if op != sc.boolChain {
			t.branches++
		}
		left := node.ChildByFieldName("left")
		for _, child := range children(node) {
			if sameNode(child, left) {
				t.merge(visit(child, source, scope{boolChain: op}))
				continue
			}
			t.merge(visit(child, source, scope{}))
		}
		return t

	case kindImport:
		for _, name := range importNames(node, source) {
			t.imports = t.imports.Add(name)
		}

	case kindFromImport:
		t.imports = t.imports.Add(fromImportModule(node, source))

	case kindFutureImport:
		t.imports = t.imports.Add("__future__")

	case kindBranch, kindLoop, kindHandler:
		t.branches++

	case kindOther:
	}

	t.merge(visitChildren(node, source))
	return t
}

func visitChildren(node *sitter.Node, source []byte) tally {
	t := newTally()
	for _, child := range children(node) {
		t.merge(visit(child, source, scope{}))
	}
	return t
}

func functionRecord(node *sitter.Node, source []byte, sc scope) FunctionRecord {
	rec := FunctionRecord{
		Name:           nodeText(node.ChildByFieldName("name"), source),
		ParameterCount: parameterCount(node.ChildByFieldName("parameters")),
		IsMethod:       sc.classBody,
		Decorators:     []string{},
		Line:           nodeLine(node),
		Docstring:      docstring(node.ChildByFieldName("body"), source),
	}
	if sc.decorators != nil {
		rec.Decorators = sc.decorators
	}
	for _, child := range children(node) {
		if child.Kind() == "async" {
			rec.IsAsync = true
			break
		}
	}
	return rec
}

func classRecord(node *sitter.Node, source []byte) ClassRecord {
	rec := ClassRecord{
		Name:    nodeText(node.ChildByFieldName("name"), source),
		Methods: []string{},
		Bases:   []string{},
		Line:    nodeLine(node),
	}

	for _, arg := range statements(node.ChildByFieldName("superclasses")) {
		if arg.Kind() == "keyword_argument" {
			continue
		}
		rec.Bases = append(rec.Bases, nodeText(arg, source))
	}

	body := node.ChildByFieldName("body")
	rec.Docstring = docstring(body, source)

	// Only direct body statements count as methods.
	for _, stmt := range statements(body) {
		fn := stmt
		if stmt.Kind() == "decorated_definition" {
			fn = stmt.ChildByFieldName("definition")
		}
		if fn != nil && fn.Kind() == "function_definition" {
			rec.Methods = append(rec.Methods, nodeText(fn.ChildByFieldName("name"), source))
		}
	}
	return rec
}

// parameterCount counts declared parameters, excluding the bare * and /
// separators.
func parameterCount(params *sitter.Node) int {
	n := 0
	for _, p := range statements(params) {
		switch p.Kind() {
		case "keyword_separator", "positional_separator":
		default:
			n++
		}
	}
	return n
}

// decoratorNames returns each decorator's dotted name without call arguments.
func decoratorNames(node *sitter.Node, source []byte) []string {
	names := []string{}
	for _, child := range children(node) {
		if child.Kind() != "decorator" {
			continue
		}
		exprs := statements(child)
		if len(exprs) == 0 {
			continue
		}
		expr := exprs[0]
		if expr.Kind() == "call" {
			expr = expr.ChildByFieldName("function")
		}
		names = append(names, nodeText(expr, source))
	}
	return names
}

// importNames returns the top-level module of every name in a plain import.
func importNames(node *sitter.Node, source []byte) []string {
	var names []string
	for _, child := range statements(node) {
		switch child.Kind() {
		case "dotted_name":
			names = append(names, topLevelModule(nodeText(child, source)))
		case "aliased_import":
			names = append(names, topLevelModule(nodeText(child.ChildByFieldName("name"), source)))
		}
	}
	return names
}

// fromImportModule returns the leading component of a from-import's module
// path. Relative imports without a module name ("from . import x") yield "".
func fromImportModule(node *sitter.Node, source []byte) string {
	module := node.ChildByFieldName("module_name")
	if module == nil {
		return ""
	}
	if module.Kind() == "relative_import" {
		for _, child := range statements(module) {
			if child.Kind() == "dotted_name" {
				return topLevelModule(nodeText(child, source))
			}
		}
		return ""
	}
	return topLevelModule(nodeText(module, source))
}

func countLines(text []byte) int {
	if len(text) == 0 {
		return 0
	}
	n := 1
	for i, b := range text {
		if b == '\n' && i < len(text)-1 {
			n++
		}
	}
	return n
}
