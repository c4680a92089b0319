package pipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/mvp-joe/testforge/internal/report"
)

// orderByDependencies sorts results so that a file comes after the local modules it
// imports. Ties are broken by path and an import that would close a cycle is ignored.
// A file's module is the top-level name it is importable as from root, so
// root/a/util.py belongs to package "a".
func orderByDependencies(root string, results []Result) []Result {
	if len(results) < 2 {
		return results
	}

	byPath := make(map[string]Result, len(results))
	byModule := make(map[string][]string)
	paths := make([]string, 0, len(results))

	for _, r := range results {
		byPath[r.SourcePath] = r
		paths = append(paths, r.SourcePath)
		module := topLevelModule(root, r.SourcePath)
		byModule[module] = append(byModule[module], r.SourcePath)
	}
	sort.Strings(paths)

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, p := range paths {
		_ = g.AddVertex(p)
	}

	for _, p := range paths {
		r := byPath[p]
		if r.Analysis == nil {
			continue
		}
		for _, imp := range r.Analysis.Imports {
			for _, dep := range byModule[imp] {
				if dep == p {
					continue
				}
				// Edges that would close a cycle are dropped.
				_ = g.AddEdge(dep, p)
			}
		}
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		order = paths
	}

	out := make([]Result, 0, len(order))
	for _, p := range order {
		out = append(out, byPath[p])
	}
	return out
}

func topLevelModule(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return report.Stem(path)
	}
	first, _, nested := strings.Cut(filepath.ToSlash(rel), "/")
	if nested {
		return first
	}
	return strings.TrimSuffix(first, filepath.Ext(first))
}
