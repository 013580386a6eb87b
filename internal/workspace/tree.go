package workspace

import (
	"sort"
	"strings"
)

// TreeNode is one node of the derived hierarchical view. The root node has
// an empty path and holds top-level entries as children.
type TreeNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsDir    bool        `json:"isDir"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree returns the hierarchical view, rebuilding it if a mutation
// invalidated the cached copy.
func (w *Workspace) Tree() *TreeNode {
	if w.tree == nil {
		w.tree = w.buildTree()
	}
	return w.tree
}

func (w *Workspace) buildTree() *TreeNode {
	root := &TreeNode{}
	nodes := map[string]*TreeNode{"": root}

	ensureDir := func(p string) *TreeNode {
		if n, ok := nodes[p]; ok {
			return n
		}
		segs := strings.Split(p, "/")
		parent := root
		prefix := ""
		for _, seg := range segs {
			if prefix == "" {
				prefix = seg
			} else {
				prefix = prefix + "/" + seg
			}
			n, ok := nodes[prefix]
			if !ok {
				n = &TreeNode{Name: seg, Path: prefix, IsDir: true}
				parent.Children = append(parent.Children, n)
				nodes[prefix] = n
			}
			parent = n
		}
		return parent
	}

	for _, f := range w.files {
		if f.IsDir {
			ensureDir(f.Path)
			continue
		}
		parent := root
		if idx := strings.LastIndex(f.Path, "/"); idx >= 0 {
			parent = ensureDir(f.Path[:idx])
		}
		parent.Children = append(parent.Children, &TreeNode{
			Name: f.Name,
			Path: f.Path,
		})
	}

	sortTree(root)
	return root
}

// sortTree orders children directories-first, then by name.
func sortTree(n *TreeNode) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, c := range n.Children {
		sortTree(c)
	}
}
