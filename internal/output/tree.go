package output

import (
	"fmt"
	"strings"

	"github.com/loanbuddy/helpctl/internal/help"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string
	Title    string
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth int  // 0 = unlimited
	ShowIDs  bool // prefix nodes that have an ID with "id:"
	Counts   bool // append the child count to nodes that have children
}

// DocumentTree converts doc into a tree: sections under the title, items
// under their section.
func DocumentTree(doc *help.Response) TreeNode {
	root := TreeNode{Title: doc.Title}
	for _, sec := range doc.Sections {
		node := TreeNode{ID: sec.ID, Title: sec.Title}
		for _, item := range sec.Items {
			node.Children = append(node.Children, TreeNode{Title: item})
		}
		root.Children = append(root.Children, node)
	}
	return root
}

// RenderTree renders root's title followed by its children
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := []string{root.Title}
	lines = append(lines, RenderTreeLines(root.Children, opts)...)
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string

	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := "├── "
		if isLast {
			connector = "└── "
		}

		lines = append(lines, prefix+connector+nodeLabel(node, opts))

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}

		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}

	return lines
}

func nodeLabel(node TreeNode, opts TreeRenderOptions) string {
	label := node.Title
	if opts.ShowIDs && node.ID != "" {
		label = node.ID + ": " + label
	}
	if opts.Counts && len(node.Children) > 0 {
		label += fmt.Sprintf(" (%d)", len(node.Children))
	}
	return label
}
