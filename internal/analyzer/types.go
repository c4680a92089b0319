package analyzer

import (
	"fmt"
	"strings"
)

// Record is the result of analyzing one Python source unit.
type Record struct {
	// Functions lists every function and method at any nesting depth, in source order.
	Functions []FunctionRecord `json:"functions" yaml:"functions"`

	// Classes lists every class at any nesting depth, in source order.
	Classes []ClassRecord `json:"classes" yaml:"classes"`

	// Complexity is 1 plus one per control-flow node.
	Complexity int `json:"complexity" yaml:"complexity"`

	// Imports holds top-level module names, first-seen order, no duplicates.
	Imports ImportSet `json:"imports" yaml:"imports"`

	// Lines is the number of lines in the source text.
	Lines int `json:"lines" yaml:"lines"`
}

// FunctionRecord describes a single function or method declaration.
type FunctionRecord struct {
	Name           string   `json:"name" yaml:"name"`
	ParameterCount int      `json:"parameter_count" yaml:"parameter_count"`
	IsMethod       bool     `json:"is_method" yaml:"is_method"`
	IsAsync        bool     `json:"is_async" yaml:"is_async"`
	Decorators     []string `json:"decorators" yaml:"decorators"`
	Line           int      `json:"line" yaml:"line"`
	Docstring      string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

// ClassRecord describes a single class declaration.
type ClassRecord struct {
	Name      string   `json:"name" yaml:"name"`
	Methods   []string `json:"methods" yaml:"methods"` // direct body functions, declaration order
	Bases     []string `json:"bases" yaml:"bases"`
	Line      int      `json:"line" yaml:"line"`
	Docstring string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
}

// ImportSet is an insertion-ordered set of module names.
type ImportSet []string

// Add appends name unless it is already present.
func (s ImportSet) Add(name string) ImportSet {
	if name == "" || s.Contains(name) {
		return s
	}
	return append(s, name)
}

// Contains reports whether name is in the set.
func (s ImportSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Merge adds every name of other in order.
func (s ImportSet) Merge(other ImportSet) ImportSet {
	for _, n := range other {
		s = s.Add(n)
	}
	return s
}

// IsPublic reports whether a Python name is public (no leading underscore).
func IsPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

// PublicFunctions returns the functions whose names do not start with an underscore.
func (r *Record) PublicFunctions() []FunctionRecord {
	out := make([]FunctionRecord, 0, len(r.Functions))
	for _, f := range r.Functions {
		if IsPublic(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

// PublicMethods returns the method names that do not start with an underscore.
func (c ClassRecord) PublicMethods() []string {
	out := make([]string, 0, len(c.Methods))
	for _, m := range c.Methods {
		if IsPublic(m) {
			out = append(out, m)
		}
	}
	return out
}

// MethodCount returns how many functions in the record are methods.
func (r *Record) MethodCount() int {
	n := 0
	for _, f := range r.Functions {
		if f.IsMethod {
			n++
		}
	}
	return n
}

// Summary returns a one-line description for logs.
func (r *Record) Summary() string {
	return fmt.Sprintf("%d functions (%d methods), %d classes, complexity %d, %d imports",
		len(r.Functions), r.MethodCount(), len(r.Classes), r.Complexity, len(r.Imports))
}
