package export

import (
	"maps"

	"github.com/DeusData/funcgraph/internal/ast"
	"github.com/DeusData/funcgraph/internal/nodestore"
)

// ASTImporter persists a whole syntax tree beneath a function.
type ASTImporter interface {
	ImportAST(s *nodestore.Session, root ast.Node, functionID int64) error
}

// TreeImporter writes one ASTNode per syntax node and IS_AST_PARENT edges
// from each node to its children. Every node is registered in the session so
// the linker can reach it afterwards.
type TreeImporter struct {
	// IndexFields limits which properties go to the lookup index. Nil
	// indexes everything except location and childNum.
	IndexFields []string
}

// ImportAST implements ASTImporter.
func (ti TreeImporter) ImportAST(s *nodestore.Session, root ast.Node, functionID int64) error {
	type item struct {
		node   ast.Node
		parent ast.Node
	}
	stack := []item{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		props := maps.Clone(it.node.Properties())
		if props == nil {
			props = map[string]any{}
		}
		props["functionId"] = functionID
		s.CreateNode(it.node, nodestore.LabelASTNode, props)

		if err := s.IndexNode(it.node, ti.indexable(props)); err != nil {
			return err
		}
		if it.parent != nil {
			if err := s.Link(it.parent, it.node, nodestore.IsASTParent, nil); err != nil {
				return err
			}
		}
		for i := it.node.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, item{node: it.node.ChildAt(i), parent: it.node})
		}
	}
	return nil
}

// indexable drops properties that are unique per node or not searchable.
func (ti TreeImporter) indexable(props map[string]any) map[string]any {
	if ti.IndexFields != nil {
		out := make(map[string]any, len(ti.IndexFields))
		for _, k := range ti.IndexFields {
			if v, ok := props[k]; ok {
				out[k] = v
			}
		}
		return out
	}
	out := maps.Clone(props)
	delete(out, "location")
	delete(out, "childNum")
	return out
}
