package profile

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/hconf/pkg/document"
)

// PathSeparator joins key segments into a property path.
const PathSeparator = "."

type frame struct {
	path []string
	node any
}

// Flatten turns a nested tree into ordered (dotted path, leaf) pairs.
//
// Traversal is depth-first in key order. Anything that is not a mapping is a
// leaf, sequences included. Empty mappings produce nothing; a non-mapping
// root produces a single property with an empty path. Plain map[string]any
// values are walked in sorted key order since they carry no order of their own.
func Flatten(tree any) []Property {
	return FlattenPrefixed(nil, tree)
}

// FlattenPrefixed flattens tree with every path starting at prefix.
func FlattenPrefixed(prefix []string, tree any) []Property {
	var props []Property

	stack := []frame{{path: prefix, node: tree}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := f.node.(type) {
		case *document.Map:
			// Pushed newest first so the oldest key is popped first.
			for p := node.Newest(); p != nil; p = p.Prev() {
				stack = append(stack, frame{path: extend(f.path, p.Key), node: p.Value})
			}
		case map[string]any:
			keys := make([]string, 0, len(node))
			for k := range node {
				keys = append(keys, k)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, frame{path: extend(f.path, k), node: node[k]})
			}
		default:
			props = append(props, Property{
				Path:  strings.Join(f.path, PathSeparator),
				Value: f.node,
			})
		}
	}

	return props
}

// extend returns a new slice; siblings must not share a backing array.
func extend(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}
