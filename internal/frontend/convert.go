package frontend

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/parser"
)

// convert copies the named nodes below root into an ast.Tree. Anonymous
// tokens (punctuation, keywords) are dropped; their text stays visible in the
// code of the enclosing node.
func convert(root *tree_sitter.Node, source []byte) *ast.Tree {
	type item struct {
		node *tree_sitter.Node
		tree *ast.Tree
	}
	out := newTree(root, source, "")
	stack := []item{{node: root, tree: out}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := uint(0); i < it.node.ChildCount(); i++ {
			child := it.node.Child(i)
			if child == nil || !child.IsNamed() {
				continue
			}
			field := it.node.FieldNameForChild(uint32(i))
			ct := it.tree.Append(newTree(child, source, field))
			stack = append(stack, item{node: child, tree: ct})
		}
	}
	return out
}

func newTree(n *tree_sitter.Node, source []byte, field string) *ast.Tree {
	return &ast.Tree{
		Type:     n.Kind(),
		Code:     parser.NodeText(n, source),
		Field:    field,
		Location: location(n),
	}
}

func location(n *tree_sitter.Node) ast.Location {
	start := n.StartPosition()
	return ast.Location{
		Line:      safeRowToLine(start.Row),
		Column:    int(start.Column),
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

// safeRowToLine converts a 0-based tree-sitter row to a 1-based line.
func safeRowToLine(row uint) int {
	const maxInt = int(^uint(0) >> 1)
	if row > uint(maxInt-1) {
		return maxInt
	}
	return int(row) + 1
}
