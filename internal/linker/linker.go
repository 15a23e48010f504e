// Package linker connects a function's grouping nodes to every AST node and
// every basic block it owns.
package linker

import (
	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/cfg"
	"github.com/DeusData/funcgraph/internal/nodestore"
)

// Linker is the part of the identity session the linkers need.
type Linker interface {
	Link(src, dst any, typ nodestore.RelType, props map[string]any) error
}

// LinkAST emits group -[IS_AST_OF_AST_ROOT]-> root, then one
// IS_AST_OF_AST_NODE edge from group to every node reachable from root,
// root included. Returns the number of edges emitted.
func LinkAST(l Linker, group any, root ast.Node) (int, error) {
	if err := l.Link(group, root, nodestore.IsASTOfASTRoot, nil); err != nil {
		return 0, err
	}
	emitted := 1

	stack := []ast.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := l.Link(group, n, nodestore.IsASTOfASTNode, nil); err != nil {
			return emitted, err
		}
		emitted++

		for i := n.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, n.ChildAt(i))
		}
	}
	return emitted, nil
}

// LinkCFG emits one IS_CFG_OF_BASIC_BLOCK edge from group to every block of
// g. A nil graph emits nothing.
func LinkCFG(l Linker, group any, g *cfg.CFG) (int, error) {
	emitted := 0
	for _, b := range g.Blocks() {
		if err := l.Link(group, b, nodestore.IsCFGOfBasicBlock, nil); err != nil {
			return emitted, err
		}
		emitted++
	}
	return emitted, nil
}
