package pipeline

import (
	"testing"

	"github.com/mvp-joe/testforge/internal/analyzer"
	"github.com/stretchr/testify/assert"
)

// Test Plan for dependency ordering:
// - A file imported by another local file comes first
// - Ties are broken by path
// - Import cycles keep every file, edges closing a cycle are dropped
// - Files without analysis still take part in ordering
// - Files in subdirectories count as their top-level package

func resultFor(path string, imports ...string) Result {
	return Result{
		SourcePath: path,
		Status:     StatusPromptOnly,
		Analysis:   &analyzer.Record{Imports: analyzer.ImportSet(imports)},
	}
}

func sourcePaths(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.SourcePath)
	}
	return out
}

func TestOrderByDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		results []Result
		want    []string
	}{
		{
			name: "imported module first",
			root: "src",
			results: []Result{
				resultFor("src/app.py", "os", "models", "service"),
				resultFor("src/models.py", "dataclasses"),
				resultFor("src/service.py", "models"),
			},
			want: []string{"src/models.py", "src/service.py", "src/app.py"},
		},
		{
			name: "package files before importers",
			results: []Result{
				resultFor("app.py", "shop"),
				resultFor("shop/cart.py", "decimal"),
				resultFor("util.py"),
				resultFor("tools/util.py", "util"),
			},
			want: []string{"shop/cart.py", "util.py", "app.py", "tools/util.py"},
		},
		{
			name: "independent files by path",
			results: []Result{
				resultFor("c.py"),
				resultFor("a.py", "json"),
				resultFor("b.py"),
			},
			want: []string{"a.py", "b.py", "c.py"},
		},
		{
			name: "cycle keeps the first edge by path",
			results: []Result{
				resultFor("b.py", "a"),
				resultFor("a.py", "b"),
			},
			want: []string{"b.py", "a.py"},
		},
		{
			name: "failed file without analysis",
			results: []Result{
				{SourcePath: "broken.py", Status: StatusError},
				resultFor("app.py", "broken"),
			},
			want: []string{"broken.py", "app.py"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := tt.root
			if root == "" {
				root = "."
			}
			assert.Equal(t, tt.want, sourcePaths(orderByDependencies(root, tt.results)))
		})
	}
}
