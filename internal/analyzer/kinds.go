package analyzer

// nodeKind is the closed set of node classes the walk dispatches on.
// Every tree-sitter kind maps to exactly one value through classify.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindFunction
	kindClass
	kindDecorated
	kindBranch  // if / elif / conditional expression / match case
	kindLoop    // for / while / comprehension for
	kindHandler // except / except*
	kindBoolean // and / or
	kindImport
	kindFromImport
	kindFutureImport
)

var kindsByName = map[string]nodeKind{
	"function_definition":     kindFunction,
	"class_definition":        kindClass,
	"decorated_definition":    kindDecorated,
	"if_statement":            kindBranch,
	"elif_clause":             kindBranch,
	"conditional_expression":  kindBranch,
	"case_clause":             kindBranch,
	"for_statement":           kindLoop,
	"while_statement":         kindLoop,
	"for_in_clause":           kindLoop,
	"except_clause":           kindHandler,
	"except_group_clause":     kindHandler,
	"boolean_operator":        kindBoolean,
	"import_statement":        kindImport,
	"import_from_statement":   kindFromImport,
	"future_import_statement": kindFutureImport,
}

// classify maps a tree-sitter node kind to its nodeKind.
func classify(kind string) nodeKind {
	if k, ok := kindsByName[kind]; ok {
		return k
	}
	return kindOther
}

// isControlFlow reports whether the kind adds one to complexity.
func (k nodeKind) isControlFlow() bool {
	switch k {
	case kindBranch, kindLoop, kindHandler, kindBoolean:
		return true
	case kindOther, kindFunction, kindClass, kindDecorated, kindImport, kindFromImport, kindFutureImport:
		return false
	}
	return false
}

func (k nodeKind) String() string {
	switch k {
	case kindFunction:
		return "function"
	case kindClass:
		return "class"
	case kindDecorated:
		return "decorated"
	case kindBranch:
		return "branch"
	case kindLoop:
		return "loop"
	case kindHandler:
		return "handler"
	case kindBoolean:
		return "boolean"
	case kindImport:
		return "import"
	case kindFromImport:
		return "from-import"
	case kindFutureImport:
		return "future-import"
	case kindOther:
		return "other"
	}
	return "unknown"
}
